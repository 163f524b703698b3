package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var invalidTablePatterns = []string{
	"could not get total row count",
	"is not a valid object name",
	"invalid object name",
	"el nombre de objeto",
	"no es válido",
	"does not exist",
	"no existe",
	"object does not exist",
	"table does not exist",
	"invalid table name",
	"could not find object",
	"no such table",
}

const invalidTableHint = "verify that the table or view exists in the database and is spelled correctly. if it belongs to another schema, use the qualified name (for example: schema.table)"

// isInvalidTableError checks the error chain for messages indicating a
// missing or invalid table.
func isInvalidTableError(err error) bool {
	if err == nil {
		return false
	}
	if matchesInvalidTable(err) {
		return true
	}
	slog.Debug("not an invalid table error", "err", err)
	return false
}

// matchesInvalidTable walks single and joined wrap chains.
func matchesInvalidTable(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := strings.ToLower(e.Error())
		for _, pat := range invalidTablePatterns {
			if strings.Contains(msg, pat) {
				return true
			}
		}
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				if matchesInvalidTable(inner) {
					return true
				}
			}
			return false
		}
	}
	return false
}

// withTableHint appends a usage hint to table lookup failures.
func withTableHint(err error) error {
	if err == nil || !isInvalidTableError(err) {
		return err
	}
	return fmt.Errorf("%w.\n\n%s", err, invalidTableHint)
}
