package sheet

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

const (
	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
)

// GoogleSheets appends rows to one spreadsheet through the Sheets v4 API.
type GoogleSheets struct {
	spreadsheetID string
	service       *sheets.Service
}

var _ Sink = (*GoogleSheets)(nil)

// NewGoogleSheets creates a sink for spreadsheetID.
func NewGoogleSheets(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleSheets, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &GoogleSheets{spreadsheetID: spreadsheetID, service: svc}, nil
}

func (g *GoogleSheets) Append(ctx context.Context, rng string, values [][]string) (int64, error) {
	vr := &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         make([][]interface{}, 0, len(values)),
	}
	for _, row := range values {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		vr.Values = append(vr.Values, cells)
	}

	resp, err := g.service.Spreadsheets.Values.Append(g.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to append to %s: %w", rng, err)
	}
	if resp.Updates == nil {
		return 0, nil
	}
	return resp.Updates.UpdatedRows, nil
}
