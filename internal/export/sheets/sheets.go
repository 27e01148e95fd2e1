// Package sheets mirrors exported rows into a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"dompet/internal/export"
)

// Writer replaces the contents of a named sheet.
type Writer interface {
	Replace(ctx context.Context, sheet string, rows []export.Row) error
}

// Client writes to one spreadsheet through the Sheets API.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ Writer = (*Client)(nil)

// New creates a client authenticated with service account credentials taken
// from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, err := serviceAccountCredentials()
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func serviceAccountCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// Replace clears columns A:F of sheet and writes the header plus rows.
func (c *Client) Replace(ctx context.Context, sheet string, rows []export.Row) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:F", sheet)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	vr := &gsheet.ValueRange{Values: export.Values(rows)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", sheet), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", sheet, err)
	}
	slog.InfoContext(ctx, "Replaced sheet contents", "sheet", sheet, "rows", len(rows))
	return nil
}

// Memory keeps written sheets in process. Development and tests use it in
// place of a spreadsheet.
type Memory struct {
	mu     sync.Mutex
	sheets map[string][]export.Row
	writes int
}

var _ Writer = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{sheets: make(map[string][]export.Row)}
}

func (m *Memory) Replace(_ context.Context, sheet string, rows []export.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[sheet] = append([]export.Row(nil), rows...)
	m.writes++
	return nil
}

// Sheet returns a copy of what was last written to sheet.
func (m *Memory) Sheet(sheet string) ([]export.Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.sheets[sheet]
	return append([]export.Row(nil), rows...), ok
}

// Writes counts Replace calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
