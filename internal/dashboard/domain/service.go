// Package domain defines the dashboard read models.
package domain

import "context"

// MonthlySeries holds one value per calendar month (index 0 = January)
// for each dashboard metric, for a single year.
type MonthlySeries struct {
	Year        int       `json:"year"`
	Months      []string  `json:"months"`
	Sales       []float64 `json:"sales"`
	Payments    []float64 `json:"payments"`
	Receivables []float64 `json:"receivables"`
	Orders      []float64 `json:"orders"`
	Expenses    []float64 `json:"expenses"`
}

type Service interface {
	Monthly(ctx context.Context, year int) (MonthlySeries, error)
}
