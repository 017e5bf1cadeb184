package render

import (
	"fmt"
	"html/template"
	"io"

	"syndicpulse/internal/report"
	appweb "syndicpulse/web"
)

// PrintOptions controls the print document. Nonce is placed on the inline
// script so a strict Content-Security-Policy can allow it.
type PrintOptions struct {
	AutoPrint bool
	Nonce     string
}

type printData struct {
	Report    report.Report
	Screen    ScreenView
	Total     string
	AutoPrint bool
	Nonce     string
}

var printTemplate = template.Must(template.ParseFS(appweb.TemplatesFS, "templates/report_print.html"))

// WritePrint writes the self-contained print document. With AutoPrint set the
// document opens the print dialog once loaded.
func WritePrint(w io.Writer, r report.Report, opts PrintOptions) error {
	data := printData{
		Report:    r,
		Screen:    Screen(r),
		Total:     r.ExpenseTotal().Format(r.Meta.Currency),
		AutoPrint: opts.AutoPrint,
		Nonce:     opts.Nonce,
	}
	if err := printTemplate.ExecuteTemplate(w, "report_print", data); err != nil {
		return fmt.Errorf("render print document: %w", err)
	}
	return nil
}
