package render

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"syndicpulse/internal/report"
)

const (
	byteOrderMark = "\uFEFF"
	csvDelimiter  = ';'
	csvLineEnd    = "\r\n"
)

// Records lays the report out as the rows of the CSV export. A nil row is a
// block separator. The Sheets publisher writes the same rows.
func Records(r report.Report) [][]string {
	m := r.Meta
	rows := [][]string{
		{title(m)},
		{labelBuilding, m.BuildingName},
		{labelCity, m.BuildingCity},
		{labelAddress, m.BuildingAddress},
		{labelPeriod, m.ReferenceLabel},
		{labelReference, m.ReferenceMonth.String()},
		{labelGeneratedOn, m.GeneratedOn.String()},
		nil,
		{blockSummary},
		{labelIndicator, labelValue},
	}
	rows = append(rows, summaryRows(r)...)

	rows = append(rows, nil, []string{blockJournal}, journalHeader(m.Currency))
	for _, e := range r.ExpenseRows {
		rows = append(rows, []string{
			e.Date.String(), e.Category, e.Vendor, e.Description, amount(e.Amount), yesNo(e.HasInvoice),
		})
	}
	rows = append(rows, []string{totalLabel, "", "", "", amount(r.ExpenseTotal()), ""})

	rows = append(rows, nil, []string{blockResidents}, residentHeader())
	for _, res := range r.ResidentRows {
		rows = append(rows, []string{
			res.Unit, res.Name, res.Phone, res.StatusLabel, res.PaidThroughLabel, res.Since,
		})
	}

	rows = append(rows, nil, []string{blockCategories}, categoryHeader(m.Currency))
	for _, c := range r.CategoryRows {
		rows = append(rows, []string{c.Category, amount(c.Amount), itoa(c.Percentage)})
	}
	return rows
}

// WriteCSV writes the Excel-compatible export: UTF-8 BOM, ';' delimiter, CRLF
// line endings and every field quoted. Writer errors are returned unchanged.
func WriteCSV(w io.Writer, r report.Report) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(byteOrderMark); err != nil {
		return err
	}
	for _, rec := range Records(r) {
		for i, field := range rec {
			if i > 0 {
				if err := bw.WriteByte(csvDelimiter); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(quote(field)); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(csvLineEnd); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// CSV returns the export as bytes.
func CSV(r report.Report) []byte {
	var buf bytes.Buffer
	_ = WriteCSV(&buf, r) // bytes.Buffer writes do not fail
	return buf.Bytes()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
