package repository

import (
	"github.com/lib/pq"

	"smartmart_service/internal/domain"
)

// Postgres error codes the repositories translate into domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	stringTooLong       = "22001"
	numericOutOfRange   = "22003"
)

const (
	DefaultLimit = 100
)

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return skip, limit
}

// referenceError turns reference, check and value-range violations into client errors.
// Any other error is returned as nil.
func referenceError(err error, what string) error {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}
	switch pqErr.Code {
	case foreignKeyViolation:
		return domain.Invalidf("%s references a record that does not exist", what)
	case checkViolation:
		return domain.Invalidf("%s data constraint violation: %s", what, pqErr.Message)
	case stringTooLong, numericOutOfRange:
		return domain.Invalidf("%s value out of range: %s", what, pqErr.Message)
	}
	return nil
}
