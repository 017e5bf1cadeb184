package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"syndicpulse/internal/amqp"
	"syndicpulse/internal/core"
	"syndicpulse/internal/log"
)

var ErrImportFormat = errors.New("invalid import file")

// Import column names, matched case-insensitively and without accents.
const (
	ColName  = "nom"
	ColPhone = "telephone"
	ColUnit  = "unite"
	ColFloor = "etage"
	ColType  = "type"
)

// Limits of a single import file.
const (
	maxImportRows  = 2000
	maxImportBytes = 10 << 20
)

type (
	ImportIssue struct {
		Line   int    `json:"line"`
		Reason string `json:"reason"`
	}

	ImportResult struct {
		Imported []core.Resident
		Skipped  []ImportIssue
	}
)

// ImportResidents reads a resident sheet (header row, then one resident per
// row) separated by ';' or ','. Rows without a name or unit are skipped and
// reported; the remaining rows are added in one step, all starting pending.
func (s *LedgerService) ImportResidents(ctx context.Context, buildingID string, src io.Reader) (ImportResult, error) {
	rows, err := parseImport(src)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	seenUnits := make(map[string]int)
	for _, row := range rows {
		r, err := s.newResident(row.input)
		if err != nil {
			return ImportResult{}, err
		}
		if err := r.Validate(); err != nil {
			res.Skipped = append(res.Skipped, ImportIssue{Line: row.line, Reason: err.Error()})
			continue
		}
		if first, dup := seenUnits[r.Unit]; dup {
			res.Skipped = append(res.Skipped, ImportIssue{Line: row.line, Reason: fmt.Sprintf("unit %s already on line %d", r.Unit, first)})
			continue
		}
		seenUnits[r.Unit] = row.line
		res.Imported = append(res.Imported, r)
	}

	if len(res.Imported) == 0 {
		return res, nil
	}
	if err := s.store.AddResidents(ctx, buildingID, res.Imported...); err != nil {
		return ImportResult{}, fmt.Errorf("import residents: %w", err)
	}

	s.logger.InfoContext(ctx, "Residents imported",
		log.FieldBuildingID, buildingID,
		log.FieldOperation, log.OpImport,
		log.FieldRows, len(res.Imported))
	if len(res.Skipped) > 0 {
		s.logger.WarnContext(ctx, "Import rows skipped", log.FieldBuildingID, buildingID, "skipped", len(res.Skipped))
	}
	if s.metrics != nil {
		s.metrics.ResidentsAdded.WithLabelValues("import").Add(float64(len(res.Imported)))
	}
	s.changed(ctx, buildingID, amqp.KindResidentsImported, "")
	return res, nil
}

type importRow struct {
	line  int
	input ResidentInput
}

func parseImport(src io.Reader) ([]importRow, error) {
	data, err := io.ReadAll(io.LimitReader(src, maxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	if len(data) > maxImportBytes {
		return nil, fmt.Errorf("%w: file larger than %d bytes", ErrImportFormat, maxImportBytes)
	}
	// Excel writes a BOM in front of UTF-8 CSV files.
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrImportFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []importRow
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
		}
		line, _ := r.FieldPos(0)
		if blank(rec) {
			continue
		}
		if len(rows) == maxImportRows {
			return nil, fmt.Errorf("%w: more than %d rows", ErrImportFormat, maxImportRows)
		}
		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		rows = append(rows, importRow{line: line, input: ResidentInput{
			Name:  get(ColName),
			Unit:  get(ColUnit),
			Phone: get(ColPhone),
			Floor: get(ColFloor),
			Type:  get(ColType),
		}})
	}
	return rows, nil
}

func detectDelimiter(head []byte) rune {
	first, _, _ := bytes.Cut(head, []byte("\n"))
	if bytes.Count(first, []byte(";")) >= bytes.Count(first, []byte(",")) && bytes.Contains(first, []byte(";")) {
		return ';'
	}
	return ','
}

func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	for _, required := range []string{ColName, ColUnit} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrImportFormat, required)
		}
	}
	return cols, nil
}

var headerReplacer = strings.NewReplacer("é", "e", "è", "e", "ê", "e", "É", "e")

func normalizeHeader(h string) string {
	return strings.ToLower(headerReplacer.Replace(strings.TrimSpace(h)))
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
