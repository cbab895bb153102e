// Package view derives display projections from store snapshots. Nothing
// here mutates its input or performs I/O.
package view

import (
	"sort"
	"sync"
	"time"

	"admin-dashboard/internal/models"
)

// SortByCreatedAtDesc returns the orders newest-first. The input slice is
// left in its stored order; the sort is a render-time projection only.
func SortByCreatedAtDesc(orders []models.Order) []models.Order {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

// SalesFromOrders reduces an order set to its sales aggregate: the sum of
// order totals and the sum of every line item's quantity.
func SalesFromOrders(orders []models.Order) models.SalesSummary {
	var summary models.SalesSummary
	for _, o := range orders {
		summary.TotalAmount += o.TotalAmount
		for _, item := range o.Items {
			summary.TotalQuantity += item.Quantity
		}
	}
	return summary
}

var (
	karachiOnce sync.Once
	karachi     *time.Location
)

// FormatKarachi renders t in Pakistan time as "M/D/YYYY h:mm AM", the
// format the dashboard shows order timestamps in. Falls back to UTC if the
// zone database is unavailable.
func FormatKarachi(t time.Time) string {
	karachiOnce.Do(func() {
		loc, err := time.LoadLocation("Asia/Karachi")
		if err != nil {
			loc = time.UTC
		}
		karachi = loc
	})
	return t.In(karachi).Format("1/2/2006 3:04 PM")
}
