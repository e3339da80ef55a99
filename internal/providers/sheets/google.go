package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/agencyops/salesboard/internal/config"
)

// GoogleSource reads a worksheet through the Google Sheets API using a
// service account.
type GoogleSource struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	worksheet     string
	log           *zap.Logger
}

// NewGoogleSource authenticates with the service account file and verifies
// the spreadsheet is reachable.
func NewGoogleSource(ctx context.Context, cfg config.SheetConfig, log *zap.Logger) (*GoogleSource, error) {
	if log == nil {
		log = zap.NewNop()
	}
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	src := &GoogleSource{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		worksheet:     cfg.WorksheetName,
		log:           log.Named("sheets"),
	}

	meta, err := svc.Spreadsheets.Get(cfg.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, mapAPIError(err)
	}
	src.log.Info("opened spreadsheet",
		zap.String("title", meta.Properties.Title),
		zap.String("worksheet", cfg.WorksheetName),
	)
	if cfg.SpreadsheetName != "" && meta.Properties.Title != cfg.SpreadsheetName {
		src.log.Warn("spreadsheet title does not match configured name",
			zap.String("title", meta.Properties.Title),
			zap.String("configured", cfg.SpreadsheetName),
		)
	}
	return src, nil
}

func (s *GoogleSource) Grid(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, mapAPIError(err)
	}
	grid := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func (s *GoogleSource) Records(ctx context.Context) ([]map[string]string, error) {
	grid, err := s.Grid(ctx)
	if err != nil {
		return nil, err
	}
	return RecordsFromGrid(grid), nil
}

// RecordsFromGrid keys every data row by the header row. Short rows leave
// trailing columns empty; headers are trimmed.
func RecordsFromGrid(grid [][]string) []map[string]string {
	if len(grid) < 2 {
		return nil
	}
	headers := grid[0]
	records := make([]map[string]string, 0, len(grid)-1)
	for _, row := range grid[1:] {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			key := strings.TrimSpace(header)
			if key == "" {
				continue
			}
			if i < len(row) {
				record[key] = row[i]
			} else {
				record[key] = ""
			}
		}
		records = append(records, record)
	}
	return records
}

func mapAPIError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if gErr.Code == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, gErr.Message)
		}
		return &APIError{StatusCode: gErr.Code, Message: gErr.Message}
	}
	return &APIError{StatusCode: 0, Message: err.Error()}
}
