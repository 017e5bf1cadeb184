package core

import "strconv"

var monthNames = [12]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

var monthShortNames = [12]string{
	"Jan.", "Fév.", "Mars", "Avr.", "Mai", "Juin",
	"Juil.", "Août", "Sep.", "Oct.", "Nov.", "Déc.",
}

// Label renders "Février 2026". Absent or invalid months render as "—".
func (ym YearMonth) Label() string {
	if ym.IsZero() || ym.Validate() != nil {
		return "—"
	}
	return monthNames[ym.Month-1] + " " + strconv.Itoa(ym.Year)
}

// ShortLabel renders "Fév. 2026".
func (ym YearMonth) ShortLabel() string {
	if ym.IsZero() || ym.Validate() != nil {
		return "—"
	}
	return monthShortNames[ym.Month-1] + " " + strconv.Itoa(ym.Year)
}
