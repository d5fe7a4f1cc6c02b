package main

import (
	"os"

	"resto-pos/internal/config"
	"resto-pos/internal/db"
	"resto-pos/internal/logger"
	"resto-pos/internal/menu"
	"resto-pos/internal/metrics"
	"resto-pos/internal/order"
	"resto-pos/internal/rest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	database := db.InitDB(cfg)
	defer database.Close()

	menuRepo := menu.NewRepository(database)
	menuSvc := menu.NewService(menuRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo)

	registry := metrics.NewRegistry()
	handler := rest.NewHandler(menuSvc, orderSvc, registry)
	router := rest.NewRouter(handler)

	logger.L().Info("server starting", zap.String("port", cfg.AppPort))
	if err := router.Run(":" + cfg.AppPort); err != nil {
		logger.L().Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
