package store

import (
	"context"
	"fmt"
	"sync"

	"admin-dashboard/internal/models"
	"admin-dashboard/internal/util"
	"admin-dashboard/internal/view"

	"go.uber.org/zap"
)

// OrderAPI is the slice of the remote gateway the order store needs.
type OrderAPI interface {
	FetchOrders(ctx context.Context) ([]models.Order, error)
	SearchOrders(ctx context.Context, query string) ([]models.Order, error)
	OrdersByStatus(ctx context.Context, status string) ([]models.Order, error)
	SalesData(ctx context.Context, startDate, endDate string) (models.SalesSummary, error)
	EditOrder(ctx context.Context, orderID string, patch models.OrderPatch) (models.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

// OrderEvents publishes admin mutations downstream. Implementations must
// tolerate publish failures; the store logs them and moves on.
type OrderEvents interface {
	PublishOrderEdited(ctx context.Context, order models.Order) error
	PublishOrderDeleted(ctx context.Context, orderID string) error
}

// OrdersSnapshot is a consistent copy of the order store's state.
type OrdersSnapshot struct {
	Orders []models.Order
	State  State
	Err    string
}

// Orders mirrors the server's order collection. The list only changes in
// response to confirmed server results: list-replacing fetches carry a
// sequence number and a completion that has been superseded by a newer
// request is discarded without touching state.
type Orders struct {
	mu     sync.Mutex
	api    OrderAPI
	events OrderEvents
	logger *zap.Logger

	orders []models.Order
	state  State
	err    string
	seq    uint64
}

// NewOrders creates an idle order store. events may be nil.
func NewOrders(api OrderAPI, events OrderEvents) *Orders {
	return &Orders{
		api:    api,
		events: events,
		logger: util.NamedLogger("orders"),
	}
}

// Snapshot returns a copy of the current list and status.
func (s *Orders) Snapshot() OrdersSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]models.Order, len(s.orders))
	copy(orders, s.orders)
	return OrdersSnapshot{Orders: orders, State: s.state, Err: s.err}
}

// FetchAll replaces the list with the full server collection.
func (s *Orders) FetchAll(ctx context.Context) error {
	return s.replaceList(ctx, s.api.FetchOrders)
}

// Search replaces the list with server-side search results. An empty query
// behaves identically to FetchAll.
func (s *Orders) Search(ctx context.Context, query string) error {
	if query == "" {
		return s.FetchAll(ctx)
	}
	return s.replaceList(ctx, func(ctx context.Context) ([]models.Order, error) {
		return s.api.SearchOrders(ctx, query)
	})
}

// FilterByStatus replaces the list with the server-filtered subset. An
// empty status behaves identically to FetchAll.
func (s *Orders) FilterByStatus(ctx context.Context, status string) error {
	if status == "" {
		return s.FetchAll(ctx)
	}
	return s.replaceList(ctx, func(ctx context.Context) ([]models.Order, error) {
		return s.api.OrdersByStatus(ctx, status)
	})
}

// Sales computes the sales aggregate. With a status filter active the
// filtered subset is re-fetched and reduced locally; otherwise the whole
// aggregation is delegated to the server's date-range endpoint, with the
// bounds passed through even when empty.
func (s *Orders) Sales(ctx context.Context, status, startDate, endDate string) (models.SalesSummary, error) {
	if status != "" {
		filtered, err := s.fetchFiltered(ctx, status)
		if err != nil {
			return models.SalesSummary{}, err
		}
		return view.SalesFromOrders(filtered), nil
	}

	summary, err := s.api.SalesData(ctx, startDate, endDate)
	if err != nil {
		s.recordFailure(err)
		return models.SalesSummary{}, err
	}
	return summary, nil
}

// Edit sends a partial update and, on success, replaces the matching entry
// with the server's returned record. Client-held fields are never merged
// in; the server is the sole source of truth.
func (s *Orders) Edit(ctx context.Context, orderID string, patch models.OrderPatch) error {
	updated, err := s.api.EditOrder(ctx, orderID, patch)
	if err != nil {
		s.recordFailure(err)
		return fmt.Errorf("failed to edit order %s: %w", orderID, err)
	}

	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			s.orders[i] = updated
			break
		}
	}
	s.state = StateLoaded
	s.err = ""
	s.mu.Unlock()

	s.logger.Info("Order updated", zap.String("order_id", orderID))
	if s.events != nil {
		if err := s.events.PublishOrderEdited(ctx, updated); err != nil {
			util.EventPublishFailuresTotal.WithLabelValues("order_edited").Inc()
			s.logger.Error("Failed to publish order edited event", zap.Error(err))
		}
	}
	return nil
}

// Delete removes the entry only after the server confirms the deletion.
// On failure the list is unchanged.
func (s *Orders) Delete(ctx context.Context, orderID string) error {
	if err := s.api.DeleteOrder(ctx, orderID); err != nil {
		s.recordFailure(err)
		return fmt.Errorf("failed to delete order %s: %w", orderID, err)
	}

	s.mu.Lock()
	kept := s.orders[:0]
	for _, o := range s.orders {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	s.state = StateLoaded
	s.err = ""
	s.mu.Unlock()

	s.logger.Info("Order deleted", zap.String("order_id", orderID))
	if s.events != nil {
		if err := s.events.PublishOrderDeleted(ctx, orderID); err != nil {
			util.EventPublishFailuresTotal.WithLabelValues("order_deleted").Inc()
			s.logger.Error("Failed to publish order deleted event", zap.Error(err))
		}
	}
	return nil
}

// fetchFiltered runs the status-filter fetch and returns the fetched
// subset, so sales reduction can use the response itself rather than the
// stored list (which a concurrent request may own by then).
func (s *Orders) fetchFiltered(ctx context.Context, status string) ([]models.Order, error) {
	var fetched []models.Order
	err := s.replaceList(ctx, func(ctx context.Context) ([]models.Order, error) {
		list, err := s.api.OrdersByStatus(ctx, status)
		fetched = list
		return list, err
	})
	if err != nil {
		return nil, err
	}
	return fetched, nil
}

func (s *Orders) replaceList(ctx context.Context, fetch func(context.Context) ([]models.Order, error)) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.state = StateLoading
	s.mu.Unlock()

	list, err := fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		// A newer request owns the list now.
		util.StoreStaleDropsTotal.WithLabelValues("orders").Inc()
		s.logger.Debug("Discarding superseded order fetch", zap.Uint64("seq", seq))
		return nil
	}

	if err != nil {
		s.state = StateFailed
		s.err = err.Error()
		util.StoreRefreshTotal.WithLabelValues("orders", "failure").Inc()
		return fmt.Errorf("failed to refresh orders: %w", err)
	}

	s.orders = list
	s.state = StateLoaded
	s.err = ""
	util.StoreRefreshTotal.WithLabelValues("orders", "success").Inc()
	return nil
}

// recordFailure marks the store Failed without touching the list.
func (s *Orders) recordFailure(err error) {
	s.mu.Lock()
	s.state = StateFailed
	s.err = err.Error()
	s.mu.Unlock()
}
