package handlers

import (
	stderrors "errors"
	"fmt"
	"time"

	"bankledger/internal/errors"
	"bankledger/internal/ledger"

	"github.com/labstack/echo/v4"
)

// SendLedgerError maps a ledger engine failure to its error code and status.
// Unexpected failures are hidden behind a generic system error.
func SendLedgerError(c echo.Context, err error) error {
	kind := ledger.KindOf(err)
	if kind == ledger.KindUnexpected {
		return SendSystemError(c, err)
	}

	code := errors.CodeForKind(kind)
	var lerr *ledger.Error
	if stderrors.As(err, &lerr) && lerr.Message != "" {
		return SendError(c, code, errors.WithMessage(lerr.Message))
	}
	return SendError(c, code)
}

func getIntParam(c echo.Context, name string, defaultValue int) int {
	param := c.QueryParam(name)
	if param == "" {
		return defaultValue
	}

	var value int
	if _, err := fmt.Sscanf(param, "%d", &value); err != nil {
		return defaultValue
	}

	return value
}

// parseDateParam parses an optional YYYY-MM-DD query parameter.
// endOfDay shifts the result to the last second of that day.
func parseDateParam(c echo.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format, use YYYY-MM-DD", name)
	}

	if endOfDay {
		parsed = parsed.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	}
	return &parsed, nil
}

// paginationParams reads offset/limit query parameters with bounds applied
func paginationParams(c echo.Context, defaultLimit, maxLimit int) (offset, limit int) {
	offset = getIntParam(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	limit = getIntParam(c, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return offset, limit
}
