package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// errConcurrentUpdate is returned inside a transaction when a compare-and-swap
// update matched no row.
var errConcurrentUpdate = errors.New("row was modified concurrently")

// isDuplicate reports whether err is a unique-constraint violation. GORM
// translates most driver errors to ErrDuplicatedKey; the message checks cover
// drivers that do not.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
