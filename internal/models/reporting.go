package models

import "time"

// ProductionItem is the yearly total for one mining item.
type ProductionItem struct {
	Tonnage float64
	UOM     string
}

// YearlyProduction aggregates submitted production entries for one site and
// year, keyed by mining item name.
type YearlyProduction struct {
	Items         map[string]ProductionItem
	LastPostingAt time.Time
}

// StockpileQuantity is the surveyed balance for one item on one stockpile.
type StockpileQuantity struct {
	QtyBySurvey float64
	UOM         string
}

// StockpileBalance maps stockpile name to per-item surveyed balances.
type StockpileBalance struct {
	Balances   map[string]map[string]StockpileQuantity
	LastUpdate time.Time
}
