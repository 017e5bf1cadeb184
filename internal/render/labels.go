package render

import (
	"strconv"

	"syndicpulse/internal/core"
	"syndicpulse/internal/report"
)

// Column and block labels shared by every renderer.
const (
	titleSuffix      = "Rapport financier"
	labelBuilding    = "Immeuble"
	labelCity        = "Ville"
	labelAddress     = "Adresse"
	labelPeriod      = "Période"
	labelReference   = "Mois de référence"
	labelGeneratedOn = "Généré le"

	blockSummary    = "Résumé"
	blockJournal    = "Journal des dépenses"
	blockResidents  = "Statut des résidents"
	blockCategories = "Répartition par catégorie"

	labelIndicator = "Indicateur"
	labelValue     = "Valeur"
	labelPaid      = "Résidents à jour"
	labelPending   = "Résidents en attente"
	labelOverdue   = "Résidents en retard"
	labelUnits     = "Unités totales"
	labelExpenses  = "Dépenses totales"

	colDate        = "Date"
	colCategory    = "Catégorie"
	colVendor      = "Fournisseur"
	colDescription = "Description"
	colAmount      = "Montant"
	colInvoice     = "Facture"
	colUnit        = "Unité"
	colName        = "Nom"
	colPhone       = "Téléphone"
	colStatus      = "Statut"
	colPaidThrough = "Payé jusqu'à"
	colSince       = "Depuis"
	colShare       = "Part (%)"

	totalLabel = "TOTAL"
	yes        = "Oui"
	no         = "Non"
)

func title(m report.Meta) string {
	if m.AppName == "" {
		return titleSuffix
	}
	return m.AppName + " · " + titleSuffix
}

func withCurrency(label, currency string) string {
	if currency == "" {
		return label
	}
	return label + " (" + currency + ")"
}

func yesNo(b bool) string {
	if b {
		return yes
	}
	return no
}

func itoa(n int) string { return strconv.Itoa(n) }

func amount(m core.Money) string { return m.String() }

func summaryRows(r report.Report) [][]string {
	s := r.Summary
	return [][]string{
		{labelPaid, itoa(s.PaidCount)},
		{labelPending, itoa(s.PendingCount)},
		{labelOverdue, itoa(s.OverdueCount)},
		{labelUnits, itoa(s.TotalUnits)},
		{withCurrency(labelExpenses, r.Meta.Currency), amount(s.TotalExpenses)},
	}
}

func journalHeader(currency string) []string {
	return []string{colDate, colCategory, colVendor, colDescription, withCurrency(colAmount, currency), colInvoice}
}

func residentHeader() []string {
	return []string{colUnit, colName, colPhone, colStatus, colPaidThrough, colSince}
}

func categoryHeader(currency string) []string {
	return []string{colCategory, withCurrency(colAmount, currency), colShare}
}
