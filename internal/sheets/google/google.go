// Package google mirrors archived statements to a Google Sheets
// spreadsheet. Authentication uses a service account, supplied inline,
// by file path, or through application default credentials.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"mledger/internal/core"
)

type Client struct {
	service       *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv builds a sheets client from environment configuration:
// GOOGLE_SPREADSHEET_ID (required), GOOGLE_SHEET_NAME (default
// "Transactions") and one of GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		return nil, fmt.Errorf("GOOGLE_SPREADSHEET_ID is required")
	}

	sheetName := os.Getenv("GOOGLE_SHEET_NAME")
	if sheetName == "" {
		sheetName = "Transactions"
	}

	service, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if credsJSON := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"); credsJSON != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(credsJSON)),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	if credsFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"); credsFile != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsFile(credsFile),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	// Fall back to application default credentials.
	return gsheet.NewService(ctx, goption.WithScopes(gsheet.SpreadsheetsScope))
}

var headerRow = []interface{}{
	"Statement", "Date", "Time", "Reference", "Type", "Party",
	"Description", "Amount (KES)", "Category", "Balance (KES)",
}

// ExportStatement appends the statement's transactions to the configured
// sheet, writing the header row first when the sheet is empty.
func (c *Client) ExportStatement(ctx context.Context, name string, txns []core.Transaction) error {
	readRange := fmt.Sprintf("%s!A1:A1", c.sheetName)
	existing, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read sheet header: %w", err)
	}

	values := make([][]interface{}, 0, len(txns)+1)
	if len(existing.Values) == 0 {
		values = append(values, headerRow)
	}
	for _, t := range txns {
		values = append(values, []interface{}{
			name, t.Date, t.Time, t.Reference, t.Type, t.Party, t.Description,
			core.FormatAmount(t.AmountCents), string(t.Category), core.FormatAmount(t.BalanceCents),
		})
	}

	writeRange := fmt.Sprintf("%s!A:J", c.sheetName)
	_, err = c.service.Spreadsheets.Values.
		Append(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append statement rows: %w", err)
	}

	slog.InfoContext(ctx, "Statement exported to sheet",
		"statement", name, "rows", len(txns), "sheet", c.sheetName)
	return nil
}
