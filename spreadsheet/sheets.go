package spreadsheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultSheetRange is read when the caller gives no range.
const DefaultSheetRange = "A:Z"

// SheetsSource reads rows from Google Sheets with a service account.
type SheetsSource struct {
	service *sheets.Service
}

func NewSheetsSource(ctx context.Context, credentialsJSON string) (*SheetsSource, error) {
	if credentialsJSON == "" {
		return nil, fmt.Errorf("google credentials not configured")
	}
	service, err := sheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &SheetsSource{service: service}, nil
}

// Rows reads readRange of spreadsheetID. The first row is the header.
func (s *SheetsSource) Rows(ctx context.Context, spreadsheetID, readRange string) ([]Row, error) {
	if readRange == "" {
		readRange = DefaultSheetRange
	}
	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	return FromTable(stringify(resp.Values))
}

func stringify(values [][]interface{}) [][]string {
	table := make([][]string, len(values))
	for i, row := range values {
		table[i] = make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			if s, ok := cell.(string); ok {
				table[i][j] = s
				continue
			}
			table[i][j] = fmt.Sprint(cell)
		}
	}
	return table
}
