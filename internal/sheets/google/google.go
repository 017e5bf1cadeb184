// Package google mirrors building reports into a Google spreadsheet, one tab
// per building, using the same rows as the CSV export.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"syndicpulse/internal/render"
	"syndicpulse/internal/report"
)

// maxTitleLen is the Sheets limit on tab titles.
const maxTitleLen = 100

// Credentials locate a service account key. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

type Publisher struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// NewPublisher creates a Sheets publisher authenticated as a service account.
func NewPublisher(ctx context.Context, spreadsheetID string, creds Credentials) (*Publisher, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	credentialsJSON, err := creds.load()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets publisher ready", "spreadsheet_id", spreadsheetID)
	return &Publisher{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// NewPublisherWithOptions builds a publisher over explicit client options,
// e.g. a custom endpoint.
func NewPublisherWithOptions(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Publisher, error) {
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Publisher{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// SheetTitle is the tab a building's report is written to.
func SheetTitle(r report.Report) string {
	title := strings.TrimSpace(r.Meta.BuildingName)
	if title == "" {
		title = r.Meta.BuildingID
	}
	// [ ] * ? / \ : are rejected in tab titles
	title = strings.Map(func(c rune) rune {
		if strings.ContainsRune(`[]*?/\:`, c) {
			return '-'
		}
		return c
	}, title)
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen])
	}
	return title
}

// a1 quotes a tab title for A1 notation.
func a1(title, cells string) string {
	q := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if cells == "" {
		return q
	}
	return q + "!" + cells
}

// Values converts CSV records to a Sheets value grid; separator records
// become empty rows.
func Values(records [][]string) [][]any {
	out := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, f := range rec {
			row[j] = f
		}
		out[i] = row
	}
	return out
}

// Publish replaces the building's tab with the report rows.
func (p *Publisher) Publish(ctx context.Context, r report.Report) error {
	title := SheetTitle(r)
	if err := p.ensureSheet(ctx, title); err != nil {
		return err
	}

	if _, err := p.svc.Spreadsheets.Values.Clear(p.spreadsheetID, a1(title, ""), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", title, err)
	}

	records := render.Records(r)
	vr := &gsheet.ValueRange{Values: Values(records)}
	if _, err := p.svc.Spreadsheets.Values.Update(p.spreadsheetID, a1(title, "A1"), vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", title, err)
	}

	slog.InfoContext(ctx, "Report published to Google Sheets",
		"building_id", r.Meta.BuildingID,
		"sheet", title,
		"rows", len(records))
	return nil
}

func (p *Publisher) ensureSheet(ctx context.Context, title string) error {
	ss, err := p.svc.Spreadsheets.Get(p.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
	}}}
	if _, err := p.svc.Spreadsheets.BatchUpdate(p.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	slog.InfoContext(ctx, "Created sheet tab", "sheet", title)
	return nil
}
