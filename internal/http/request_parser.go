// This file turns request bodies into service inputs. Bodies may be JSON
// objects or form-encoded, so the same endpoints serve API clients and
// HTMX forms.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"syndicpulse/internal/core"
	"syndicpulse/internal/services"
)

const maxFormBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser reads the body once and answers field lookups from the
// JSON object or the form values.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads at most 1 MiB of the request body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxFormBytes))
	return p
}

// Parse decodes the body as JSON when it looks like an object, otherwise
// as form values.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, p.err)
	}
	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(body, "{") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(body)
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
	}
	return p.err
}

// Get returns the trimmed, sanitized value of key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Bool accepts true/1/on/oui; anything else is false.
func (p *RequestBodyParser) Bool(key string) bool {
	switch strings.ToLower(p.Get(key)) {
	case "true", "1", "on", "oui", "yes":
		return true
	}
	return false
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParsePaymentInput reads resident_id, months (default 1), amount, method,
// date and ref. Empty optional fields are left zero for the service to
// default.
func ParsePaymentInput(p *RequestBodyParser) (services.PaymentInput, error) {
	in := services.PaymentInput{
		ResidentID:    p.Get("resident_id"),
		MonthsCovered: 1,
		Method:        core.PaymentMethod(strings.ToLower(p.Get("method"))),
		Reference:     p.Get("ref"),
	}
	if in.ResidentID == "" {
		return in, errors.New("resident_id is required")
	}
	if v := p.Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return in, core.ErrInvalidMonthsCovered
		}
		in.MonthsCovered = n
	}
	if v := p.Get("amount"); v != "" {
		m, err := core.ParseAmount(v)
		if err != nil {
			return in, err
		}
		in.Amount = m
	}
	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return in, err
		}
		in.Date = d
	}
	return in, nil
}

// ParseResidentInput reads the resident form fields. Accented field names
// (téléphone, étage) are accepted as sent by the French form.
func ParseResidentInput(p *RequestBodyParser) services.ResidentInput {
	return services.ResidentInput{
		Name:  firstNonEmpty(p.Get("name"), p.Get("nom")),
		Unit:  firstNonEmpty(p.Get("unit"), p.Get("unite")),
		Phone: firstNonEmpty(p.Get("phone"), p.Get("telephone"), p.Get("téléphone")),
		Floor: firstNonEmpty(p.Get("floor"), p.Get("etage"), p.Get("étage")),
		Type:  p.Get("type"),
	}
}

// ParseExpenseInput reads date, category, vendor, amount, description and
// has_invoice. The amount is required.
func ParseExpenseInput(p *RequestBodyParser) (services.ExpenseInput, error) {
	in := services.ExpenseInput{
		Category:    p.Get("category"),
		Vendor:      p.Get("vendor"),
		Description: p.Get("description"),
		HasInvoice:  p.Bool("has_invoice"),
	}
	m, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return in, err
	}
	in.Amount = m
	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return in, err
		}
		in.Date = d
	}
	return in, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
