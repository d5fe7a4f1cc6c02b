package validation

import "fmt"

// ValidationError marks malformed or incomplete input. It is checked before
// any write begins, so it never triggers a transaction rollback.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
