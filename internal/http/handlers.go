package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	applog "syndicpulse/internal/log"
	"syndicpulse/internal/middleware/security"
	"syndicpulse/internal/render"
	"syndicpulse/internal/services"
)

const maxImportBytes = 10 << 20

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks that the ledger store answers, then runs the extra
// readiness checks.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := make(map[string]string)

	if _, err := s.buildings.ListBuildings(ctx); err != nil {
		checks["ledger"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["ledger"] = "ok"
	}
	for _, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			checks[c.Name] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[c.Name] = "ok"
	}
	checks["rate_limiter_clients"] = strconv.Itoa(s.limiter.ActiveClients())

	NewResponse().Status(code).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := s.buildings.ListBuildings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]buildingJSON, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, toBuildingJSON(b))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	view, err := s.reports.ExportScreen(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	residents, err := s.ledger.Outstanding(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]residentJSON, 0, len(residents))
	for _, res := range residents {
		rj, err := toResidentJSON(res, s.ledger.Reference())
		if err != nil {
			writeError(w, r, err)
			return
		}
		out = append(out, rj)
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.ledger.Payments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]paymentJSON, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentJSON(p))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	buildingID := r.PathValue("id")
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := ParsePaymentInput(p)
	if err != nil {
		writeParseError(w, r, err)
		return
	}

	res, err := s.ledger.RecordPayment(r.Context(), buildingID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rj, err := toResidentJSON(res.Resident, s.ledger.Reference())
	if err != nil {
		writeError(w, r, err)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		TriggerLedgerChanged(buildingID).
		TriggerSuccessNotification(fmt.Sprintf("Paiement enregistré : %s à jour jusqu'à %s",
			res.Resident.Name, res.Resident.PaidThrough.Label())).
		JSON(map[string]any{
			"payment":  toPaymentJSON(res.Payment),
			"resident": rj,
		}).
		Write(w)
}

func (s *Server) handleAddResident(w http.ResponseWriter, r *http.Request) {
	buildingID := r.PathValue("id")
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.ledger.AddResident(r.Context(), buildingID, ParseResidentInput(p))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rj, err := toResidentJSON(res, s.ledger.Reference())
	if err != nil {
		writeError(w, r, err)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		TriggerLedgerChanged(buildingID).
		TriggerSuccessNotification("Résident ajouté : " + res.Name).
		JSON(rj).
		Write(w)
}

// handleImportResidents accepts the sheet either as the "file" part of a
// multipart form or as the raw request body.
func (s *Server) handleImportResidents(w http.ResponseWriter, r *http.Request) {
	buildingID := r.PathValue("id")
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes+1<<20)

	var src io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			BadRequestError("fichier manquant (champ \"file\")").Write(w)
			return
		}
		defer file.Close()
		src = file
	}

	res, err := s.ledger.ImportResidents(r.Context(), buildingID, src)
	if err != nil {
		writeError(w, r, err)
		return
	}

	imported := make([]residentJSON, 0, len(res.Imported))
	for _, resident := range res.Imported {
		rj, err := toResidentJSON(resident, s.ledger.Reference())
		if err != nil {
			writeError(w, r, err)
			return
		}
		imported = append(imported, rj)
	}

	skipped := res.Skipped
	if skipped == nil {
		skipped = []services.ImportIssue{}
	}

	b := NewResponse()
	if len(res.Imported) > 0 {
		b.Status(http.StatusCreated).TriggerLedgerChanged(buildingID)
	}
	if len(res.Skipped) > 0 {
		b.TriggerNotification(NotificationWarning,
			fmt.Sprintf("%d résident(s) importé(s), %d ligne(s) ignorée(s)", len(res.Imported), len(res.Skipped)), 5000)
	} else {
		b.TriggerSuccessNotification(fmt.Sprintf("%d résident(s) importé(s)", len(res.Imported)))
	}
	b.JSON(map[string]any{
		"imported": imported,
		"skipped":  skipped,
	}).Write(w)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	buildingID := r.PathValue("id")
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := ParseExpenseInput(p)
	if err != nil {
		writeParseError(w, r, err)
		return
	}

	e, err := s.ledger.AddExpense(r.Context(), buildingID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		TriggerLedgerChanged(buildingID).
		TriggerSuccessNotification("Dépense enregistrée : " + e.Description).
		JSON(toExpenseJSON(e)).
		Write(w)
}

// handleExportCSV renders into a buffer first: the filename is only known
// once the report is built, and it goes into a header.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	filename, err := s.reports.ExportCSV(r.Context(), r.PathValue("id"), &buf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().
		Header("Content-Type", "text/csv; charset=utf-8").
		Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename})).
		Header("Cache-Control", "no-store").
		Body(buf.Bytes()).
		Write(w)
}

// handleExportPrint serves the print document. ?autoprint=1 opens the
// browser print dialog on load.
func (s *Server) handleExportPrint(w http.ResponseWriter, r *http.Request) {
	autoPrint, _ := strconv.ParseBool(r.URL.Query().Get("autoprint"))
	opts := render.PrintOptions{
		AutoPrint: autoPrint,
		Nonce:     security.Nonce(r.Context()),
	}

	var buf bytes.Buffer
	filename, err := s.reports.ExportPrint(r.Context(), r.PathValue("id"), &buf, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Print document rendered",
		applog.FieldBuildingID, r.PathValue("id"),
		"bytes", buf.Len())
	NewResponse().
		Header("Content-Type", "text/html; charset=utf-8").
		Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename})).
		Header("Cache-Control", "no-store").
		Body(buf.Bytes()).
		Write(w)
}

// writeParseError reports a field that could not be read: 422 for values
// the ledger would reject anyway, 400 otherwise.
func writeParseError(w http.ResponseWriter, r *http.Request, err error) {
	if services.IsValidation(err) {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	BadRequestError(err.Error()).Write(w)
}
