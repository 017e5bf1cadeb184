package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syndicpulse/internal/core"
	"syndicpulse/internal/report"
)

func sampleReport(t *testing.T) report.Report {
	t.Helper()
	b := core.Building{ID: "bld-1", Name: "Norwest", City: "Tanger", Address: "Av. Mohammed VI, Tanger 90000", TotalUnits: 48}
	residents := []core.Resident{
		{ID: "r08", Unit: "Apt 6B", Name: "Mehdi Chraibi", Phone: "+212668901234", Since: "2021", PaidThrough: core.MustYearMonth(2026, 1)},
		{ID: "r10", Unit: "Apt 9A", Name: `Lamia "Lala" Bensouda`, Phone: "+212661123456", Since: "2019", PaidThrough: core.MustYearMonth(2026, 2)},
		{ID: "r11", Unit: "Apt 11C", Name: "Lamia Tazi", Phone: "+212662234567", Since: "2023", PaidThrough: core.MustYearMonth(2025, 11)},
	}
	journal := []core.ExpenseEntry{
		{Date: core.NewDate(2026, 2, 18), Category: "Entretien & réparations", Vendor: "Otis Morocco", Amount: core.Money{Units: 8400}, Description: "Révision complète ascenseur Bloc B", HasInvoice: true},
		{Date: core.NewDate(2026, 2, 15), Category: "Nettoyage", Vendor: "ProNet SARL", Amount: core.Money{Units: 3200}, Description: "Nettoyage; parties communes", HasInvoice: true},
		{Date: core.NewDate(2026, 2, 10), Category: "Eau & Électricité", Vendor: "Redal", Amount: core.Money{Units: 1850}, Description: "Facture eau", HasInvoice: true},
		{Date: core.NewDate(2026, 2, 8), Category: "Entretien & réparations", Vendor: "IBS Plomberie", Amount: core.Money{Units: 3600}, Description: "Réparation fuite parking sous-sol"},
	}
	breakdown := []core.CategoryShare{
		{Category: "Entretien & réparations", Amount: core.Money{Units: 12400}, Percentage: 38},
		{Category: "Gardiennage", Amount: core.Money{Units: 8200}, Percentage: 25},
	}
	r, err := report.Assemble(b, residents, journal, breakdown, core.MustYearMonth(2026, 2), report.Options{
		AppName:     "SyndicPulse",
		Currency:    "MAD",
		GeneratedOn: core.NewDate(2026, 2, 20),
	})
	require.NoError(t, err)
	return r
}

func csvLines(t *testing.T, data []byte) []string {
	t.Helper()
	s := string(data)
	require.True(t, strings.HasPrefix(s, "\uFEFF"), "missing byte order mark")
	s = strings.TrimPrefix(s, "\uFEFF")
	require.True(t, strings.HasSuffix(s, "\r\n"))
	lines := strings.Split(strings.TrimSuffix(s, "\r\n"), "\r\n")
	for _, l := range lines {
		require.NotContains(t, l, "\n", "bare LF inside a row")
	}
	return lines
}

func TestWriteCSV_Format(t *testing.T) {
	lines := csvLines(t, CSV(sampleReport(t)))

	assert.Equal(t, `"SyndicPulse · Rapport financier"`, lines[0])
	assert.Equal(t, `"Immeuble";"Norwest"`, lines[1])
	assert.Contains(t, lines, `"Apt 9A";"Lamia ""Lala"" Bensouda";"+212661123456";"Payé";"Février 2026";"2019"`)
	assert.Contains(t, lines, `"2026-02-15";"Nettoyage";"ProNet SARL";"Nettoyage; parties communes";"3200";"Oui"`)
	assert.Contains(t, lines, `"Entretien & réparations";"12400";"38"`)
}

func TestWriteCSV_TotalsRow(t *testing.T) {
	lines := csvLines(t, CSV(sampleReport(t)))
	assert.Contains(t, lines, `"TOTAL";"";"";"";"17050";""`)
}

func TestWriteCSV_BlockOrder(t *testing.T) {
	lines := csvLines(t, CSV(sampleReport(t)))

	var blocks []string
	for i, l := range lines {
		if l == "" {
			require.Less(t, i+1, len(lines))
			blocks = append(blocks, lines[i+1])
		}
	}
	assert.Equal(t, []string{
		`"Résumé"`,
		`"Journal des dépenses"`,
		`"Statut des résidents"`,
		`"Répartition par catégorie"`,
	}, blocks)
}

func TestRecords_SummaryMatchesReport(t *testing.T) {
	r := sampleReport(t)
	recs := Records(r)

	values := map[string]string{}
	for _, rec := range recs {
		if len(rec) == 2 {
			values[rec[0]] = rec[1]
		}
	}
	assert.Equal(t, "1", values["Résidents à jour"])
	assert.Equal(t, "1", values["Résidents en attente"])
	assert.Equal(t, "1", values["Résidents en retard"])
	assert.Equal(t, "48", values["Unités totales"])
	assert.Equal(t, "17050", values["Dépenses totales (MAD)"])
}

func TestTotalsAgreeAcrossRenderers(t *testing.T) {
	r := sampleReport(t)

	var sum int64
	for _, row := range r.ExpenseRows {
		sum += row.Amount.Units
	}
	assert.Equal(t, sum, r.Summary.TotalExpenses.Units)
	assert.Contains(t, string(CSV(r)), `"TOTAL";"";"";"";"17050";""`)

	var buf bytes.Buffer
	require.NoError(t, WritePrint(&buf, r, PrintOptions{}))
	assert.Contains(t, buf.String(), "17 050 MAD")

	v := Screen(r)
	assert.Equal(t, "17 050 MAD", v.KPIs[4].Value)
	assert.Equal(t, "17 050 MAD", v.Expenses.Footer[4])
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriters_SurfaceIOErrors(t *testing.T) {
	boom := errors.New("disk full")
	r := sampleReport(t)

	assert.ErrorIs(t, WriteCSV(failingWriter{boom}, r), boom)
	assert.ErrorIs(t, WritePrint(failingWriter{boom}, r, PrintOptions{}), boom)
}

func TestWritePrint(t *testing.T) {
	r := sampleReport(t)

	var buf bytes.Buffer
	require.NoError(t, WritePrint(&buf, r, PrintOptions{AutoPrint: true, Nonce: "abc123"}))
	html := buf.String()

	assert.Contains(t, html, `<script nonce="abc123">`)
	assert.Contains(t, html, "window.print()")
	assert.Contains(t, html, "Norwest")
	assert.Contains(t, html, "Février 2026")
	assert.Contains(t, html, "Lamia &#34;Lala&#34; Bensouda")
	assert.Contains(t, html, `status-overdue`)
	for _, block := range []string{"Journal des dépenses", "Statut des résidents", "Répartition par catégorie"} {
		assert.Contains(t, html, block)
	}

	buf.Reset()
	require.NoError(t, WritePrint(&buf, r, PrintOptions{}))
	assert.NotContains(t, buf.String(), "window.print()")
}

func TestScreen(t *testing.T) {
	v := Screen(sampleReport(t))

	assert.Equal(t, "Norwest", v.Building)
	assert.Equal(t, "Février 2026", v.Period)
	require.Len(t, v.Residents.Rows, 3)
	assert.Equal(t, []core.PaymentStatus{core.StatusPending, core.StatusPaid, core.StatusOverdue}, v.Residents.Statuses)
	assert.Equal(t, "En attente", v.Residents.Rows[0][3])
	assert.Equal(t, "8 400 MAD", v.Expenses.Rows[0][4])
	assert.Equal(t, "Non", v.Expenses.Rows[3][5])
}

func TestWriteTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTerminal(&buf, Screen(sampleReport(t))))
	out := buf.String()
	assert.Contains(t, out, "Norwest")
	assert.Contains(t, out, "Otis Morocco")
	assert.Contains(t, out, "TOTAL")
}

func TestFilename(t *testing.T) {
	on := core.NewDate(2026, 2, 20)
	cases := []struct {
		building string
		ext      string
		want     string
	}{
		{"Norwest", "csv", "SyndicPulse_Norwest_2026-02-20.csv"},
		{"Résidence Atlas", "csv", "SyndicPulse_Résidence_Atlas_2026-02-20.csv"},
		{"Jardins  du\tRoi", ".html", "SyndicPulse_Jardins_du_Roi_2026-02-20.html"},
		{"Norwest", "", "SyndicPulse_Norwest_2026-02-20"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Filename("SyndicPulse", tc.building, on, tc.ext))
	}
}
