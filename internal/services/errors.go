package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound       = errors.New("registro no encontrado")
	ErrInvalidState   = errors.New("transición de estado inválida")
	ErrDuplicate      = errors.New("registro duplicado")
	ErrInvalidPeriod  = errors.New("período inválido")
	ErrScanInProgress = errors.New("ya hay un escaneo de facturación en curso")
)

// lookupError maps a repository lookup failure onto ErrNotFound, keeping other
// store errors wrapped with the entity description.
func lookupError(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
