package sysconfig

import "time"

// Setting is one system configuration entry.
type Setting struct {
	Key         string
	Value       string
	Description string
	UpdatedBy   int64
	UpdatedAt   time.Time
}

// TableSummary describes one table for the raw browser listing.
type TableSummary struct {
	Name     string `json:"name"`
	RowCount int64  `json:"rowCount"`
}

// TableRows carries a page of raw rows from one table.
type TableRows struct {
	Table   string           `json:"table"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}
