package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"wanotify/internal/models"
)

const reportTimeLayout = "2 Jan 2006 15:04"

// ReportStore aggregates mining production and stockpile data for the chatbot.
type ReportStore interface {
	GetYearlyProduction(ctx context.Context, siteName, year string) (*models.YearlyProduction, error)
	GetStockpileBalance(ctx context.Context, siteName, year string) (*models.StockpileBalance, error)
}

// Reporter renders chatbot report replies from aggregated site data.
type Reporter struct {
	store ReportStore
}

func NewReporter(store ReportStore) *Reporter {
	return &Reporter{store: store}
}

// ProductionReport renders the yearly production totals for one site.
func (r *Reporter) ProductionReport(ctx context.Context, siteName, year string) (string, error) {
	prod, err := r.store.GetYearlyProduction(ctx, siteName, year)
	if err != nil {
		return "", err
	}
	if prod == nil {
		return "Production data is not available", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total produksi (_update %s_)\n", prod.LastPostingAt.Format(reportTimeLayout))
	for _, item := range sortedKeys(prod.Items) {
		val := prod.Items[item]
		fmt.Fprintf(&b, "- %s = *%s* %s\n", item, formatQuantity(val.Tonnage), val.UOM)
	}
	return b.String(), nil
}

// StockpileReport renders the surveyed stockpile balances for one site.
func (r *Reporter) StockpileReport(ctx context.Context, siteName, year string) (string, error) {
	sbal, err := r.store.GetStockpileBalance(ctx, siteName, year)
	if err != nil {
		return "", err
	}
	if sbal == nil {
		return "Stockpile balance data is not available", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stockpile balance (_update %s_)\n", sbal.LastUpdate.Format(reportTimeLayout))
	for _, stockpile := range sortedKeys(sbal.Balances) {
		fmt.Fprintf(&b, "- %s = ", stockpile)
		items := sbal.Balances[stockpile]
		for _, item := range sortedKeys(items) {
			qty := items[item]
			fmt.Fprintf(&b, "*%s* %s\n", formatQuantity(qty.QtyBySurvey), qty.UOM)
		}
	}
	return b.String(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatQuantity renders a quantity with two decimals and thousands
// separators, e.g. 1234567.5 -> "1,234,567.50".
func formatQuantity(v float64) string {
	s := fmt.Sprintf("%.2f", v)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
