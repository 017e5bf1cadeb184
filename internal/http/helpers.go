package http

import (
	"errors"
	"net/http"
	"strings"

	"syndicpulse/internal/core"
	"syndicpulse/internal/ledger"
	applog "syndicpulse/internal/log"
	"syndicpulse/internal/services"
)

// sanitizeInput removes control characters except tab, newline and
// carriage return, then trims whitespace.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// writeError maps service errors onto status codes: bad input is 422, an
// unknown building or resident 404, a duplicate 409. Anything else is
// logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case services.IsValidation(err):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, ledger.ErrNotFound):
		NotFoundError(err.Error()).Write(w)
	case errors.Is(err, ledger.ErrDuplicate):
		ConflictError(err.Error()).Write(w)
	case errors.Is(err, errMalformedBody):
		BadRequestError(err.Error()).Write(w)
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		InternalServerError("erreur interne").Write(w)
	}
}

type (
	buildingJSON struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		City        string `json:"city"`
		Address     string `json:"address"`
		TotalUnits  int    `json:"total_units"`
		ReserveFund int64  `json:"reserve_fund"`
		Manager     string `json:"manager,omitempty"`
	}

	residentJSON struct {
		ID          string             `json:"id"`
		Unit        string             `json:"unit"`
		Name        string             `json:"name"`
		Phone       string             `json:"phone"`
		Floor       int                `json:"floor"`
		Type        core.ResidentType  `json:"type"`
		Since       string             `json:"since"`
		PaidThrough core.YearMonth     `json:"paid_through"`
		Status      core.PaymentStatus `json:"status"`
		StatusLabel string             `json:"status_label"`
	}

	paymentJSON struct {
		ID            string             `json:"id"`
		ResidentID    string             `json:"resident_id"`
		Amount        int64              `json:"amount"`
		MonthsCovered int                `json:"months_covered"`
		Method        core.PaymentMethod `json:"method"`
		Date          string             `json:"date"`
		Reference     string             `json:"ref,omitempty"`
	}

	expenseJSON struct {
		ID          string `json:"id"`
		Date        string `json:"date"`
		Category    string `json:"category"`
		Vendor      string `json:"vendor"`
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
		HasInvoice  bool   `json:"has_invoice"`
	}
)

func toBuildingJSON(b core.Building) buildingJSON {
	return buildingJSON{
		ID:          b.ID,
		Name:        b.Name,
		City:        b.City,
		Address:     b.Address,
		TotalUnits:  b.TotalUnits,
		ReserveFund: b.ReserveFund.Units,
		Manager:     b.Manager,
	}
}

func toResidentJSON(r core.Resident, reference core.YearMonth) (residentJSON, error) {
	status, err := core.Classify(r.PaidThrough, reference)
	if err != nil {
		return residentJSON{}, err
	}
	return residentJSON{
		ID:          r.ID,
		Unit:        r.Unit,
		Name:        r.Name,
		Phone:       r.Phone,
		Floor:       r.Floor,
		Type:        r.Type,
		Since:       r.Since,
		PaidThrough: r.PaidThrough,
		Status:      status,
		StatusLabel: status.Label(),
	}, nil
}

func toPaymentJSON(p core.Payment) paymentJSON {
	return paymentJSON{
		ID:            p.ID,
		ResidentID:    p.ResidentID,
		Amount:        p.Amount.Units,
		MonthsCovered: p.MonthsCovered,
		Method:        p.Method,
		Date:          p.Date.String(),
		Reference:     p.Reference,
	}
}

func toExpenseJSON(e core.ExpenseEntry) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Date:        e.Date.String(),
		Category:    e.Category,
		Vendor:      e.Vendor,
		Amount:      e.Amount.Units,
		Description: e.Description,
		HasInvoice:  e.HasInvoice,
	}
}
