package sheets

import (
	"context"
	"errors"
	"fmt"
)

// Source reads the sales spreadsheet. Records returns one header-keyed map
// per data row; Grid returns the raw cell grid including the header row.
// Both may fail with *APIError (including the rate-limited variant) or
// ErrNotFound.
type Source interface {
	Records(ctx context.Context) ([]map[string]string, error)
	Grid(ctx context.Context) ([][]string, error)
}

// ErrNotFound reports a missing spreadsheet or worksheet.
var ErrNotFound = errors.New("sheet_not_found")

// APIError is a failed spreadsheet API call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets api error (status %d): %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err is the quota-exceeded variant that
// should widen the polling interval.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 429
}

// NoOpSource serves empty data; it stands in for the spreadsheet in tests
// and local development.
type NoOpSource struct{}

func (NoOpSource) Records(ctx context.Context) ([]map[string]string, error) {
	return nil, nil
}

func (NoOpSource) Grid(ctx context.Context) ([][]string, error) {
	return nil, nil
}
