package rest

import (
	"errors"
	"net/http"
	"strconv"

	"resto-pos/internal/logger"
	"resto-pos/internal/menu"
	"resto-pos/internal/order"
	"resto-pos/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is a storage-level failure: logged in full, surfaced generically.
func respondError(c *gin.Context, err error) {
	var validationErr validation.ValidationError
	var statusErr *order.StatusError

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &statusErr),
		errors.Is(err, order.ErrMenuItemUnknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, menu.ErrMenuItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, menu.ErrMenuItemInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.FromCtx(c.Request.Context()).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
