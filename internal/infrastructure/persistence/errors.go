package persistence

import (
	"errors"
	"strings"

	"github.com/viaticos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// isDuplicateKey reports a unique constraint violation. TranslateError maps
// most drivers to gorm.ErrDuplicatedKey; the message check covers the rest.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint failed")
}

// notFound maps gorm.ErrRecordNotFound to a NOT_FOUND domain error
func notFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewDomainError(shared.CodeNotFound, message)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
