package view

import (
	"testing"
	"time"

	"admin-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSortByCreatedAtDesc(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	t3 := t1.Add(48 * time.Hour)

	orders := []models.Order{
		{ID: "b", CreatedAt: t2},
		{ID: "a", CreatedAt: t1},
		{ID: "c", CreatedAt: t3},
	}

	sorted := SortByCreatedAtDesc(orders)

	assert.Equal(t, "c", sorted[0].ID)
	assert.Equal(t, "b", sorted[1].ID)
	assert.Equal(t, "a", sorted[2].ID)

	// stored order untouched
	assert.Equal(t, "b", orders[0].ID)
	assert.Equal(t, "a", orders[1].ID)
	assert.Equal(t, "c", orders[2].ID)
}

func TestSalesFromOrders(t *testing.T) {
	orders := []models.Order{
		{TotalAmount: 100, Items: []models.OrderItem{{Quantity: 2}}},
		{TotalAmount: 50, Items: []models.OrderItem{{Quantity: 1}}},
	}

	summary := SalesFromOrders(orders)

	assert.Equal(t, float64(150), summary.TotalAmount)
	assert.Equal(t, 3, summary.TotalQuantity)
}

func TestSalesFromOrdersEmpty(t *testing.T) {
	summary := SalesFromOrders(nil)
	assert.Zero(t, summary.TotalAmount)
	assert.Zero(t, summary.TotalQuantity)
}

func TestFormatKarachi(t *testing.T) {
	// Pakistan is UTC+5 year-round.
	instant := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "3/5/2024 3:30 PM", FormatKarachi(instant))

	morning := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "1/1/2025 1:00 AM", FormatKarachi(morning))
}
