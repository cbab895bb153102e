package store

import (
	"context"
	"fmt"
	"sync"

	"admin-dashboard/internal/gateway"
	"admin-dashboard/internal/models"
	"admin-dashboard/internal/util"

	"go.uber.org/zap"
)

// ProductAPI is the slice of the remote gateway the product store needs.
type ProductAPI interface {
	ListProducts(ctx context.Context, page int, search, category string) (models.ProductPage, error)
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	UploadImages(ctx context.Context, files []gateway.Upload) ([]string, error)
}

// ProductEvents publishes catalog mutations downstream.
type ProductEvents interface {
	PublishProductCreated(ctx context.Context, product models.Product) error
	PublishProductUpdated(ctx context.Context, product models.Product) error
	PublishProductDeleted(ctx context.Context, productID string) error
}

// Query is the listing filter triple. Any change to it re-fetches the page.
type Query struct {
	Page     int
	Search   string
	Category string
}

// ProductsSnapshot is a consistent copy of the product store's state.
type ProductsSnapshot struct {
	Products   []models.Product
	TotalPages int
	Query      Query
	State      State
	Err        string
}

// Products mirrors one page of the paginated catalog listing, keyed by the
// filter triple. Same sequence guard as the order store: a superseded
// refresh never overwrites a newer one.
type Products struct {
	mu     sync.Mutex
	api    ProductAPI
	events ProductEvents
	logger *zap.Logger

	products   []models.Product
	totalPages int
	query      Query
	state      State
	err        string
	seq        uint64
}

// NewProducts creates an idle product store. events may be nil.
func NewProducts(api ProductAPI, events ProductEvents) *Products {
	return &Products{
		api:    api,
		events: events,
		logger: util.NamedLogger("products"),
	}
}

// Snapshot returns a copy of the current page and status.
func (s *Products) Snapshot() ProductsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]models.Product, len(s.products))
	copy(products, s.products)
	return ProductsSnapshot{
		Products:   products,
		TotalPages: s.totalPages,
		Query:      s.query,
		State:      s.state,
		Err:        s.err,
	}
}

// Refresh fetches the page selected by q, replacing the list and the total
// page count.
func (s *Products) Refresh(ctx context.Context, q Query) error {
	if q.Page < 1 {
		q.Page = 1
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.query = q
	s.state = StateLoading
	s.mu.Unlock()

	page, err := s.api.ListProducts(ctx, q.Page, q.Search, q.Category)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		util.StoreStaleDropsTotal.WithLabelValues("products").Inc()
		s.logger.Debug("Discarding superseded product fetch", zap.Uint64("seq", seq))
		return nil
	}

	if err != nil {
		s.state = StateFailed
		s.err = err.Error()
		util.StoreRefreshTotal.WithLabelValues("products", "failure").Inc()
		return fmt.Errorf("failed to refresh products: %w", err)
	}

	s.products = page.Products
	s.totalPages = page.TotalPages
	s.state = StateLoaded
	s.err = ""
	util.StoreRefreshTotal.WithLabelValues("products", "success").Inc()
	return nil
}

// Create uploads any images first, then creates the product with the
// returned URLs. The local page is not touched; the new record shows up on
// the next Refresh.
func (s *Products) Create(ctx context.Context, product models.Product, images []gateway.Upload) (models.Product, error) {
	if len(images) > 0 {
		urls, err := s.api.UploadImages(ctx, images)
		if err != nil {
			s.recordFailure(err)
			return models.Product{}, fmt.Errorf("failed to upload product images: %w", err)
		}
		product.ImageURLs = urls
	}

	created, err := s.api.CreateProduct(ctx, product)
	if err != nil {
		s.recordFailure(err)
		return models.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", zap.String("product_id", created.ID))
	if s.events != nil {
		if err := s.events.PublishProductCreated(ctx, created); err != nil {
			util.EventPublishFailuresTotal.WithLabelValues("product_created").Inc()
			s.logger.Error("Failed to publish product created event", zap.Error(err))
		}
	}
	return created, nil
}

// Edit sends the entire record and, on success, replaces the matching page
// entry with the server's returned record.
func (s *Products) Edit(ctx context.Context, product models.Product) error {
	updated, err := s.api.UpdateProduct(ctx, product)
	if err != nil {
		s.recordFailure(err)
		return fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == updated.ID {
			s.products[i] = updated
			break
		}
	}
	s.state = StateLoaded
	s.err = ""
	s.mu.Unlock()

	s.logger.Info("Product updated", zap.String("product_id", updated.ID))
	if s.events != nil {
		if err := s.events.PublishProductUpdated(ctx, updated); err != nil {
			util.EventPublishFailuresTotal.WithLabelValues("product_updated").Inc()
			s.logger.Error("Failed to publish product updated event", zap.Error(err))
		}
	}
	return nil
}

// Delete removes the entry only after the server confirms the deletion.
func (s *Products) Delete(ctx context.Context, productID string) error {
	if err := s.api.DeleteProduct(ctx, productID); err != nil {
		s.recordFailure(err)
		return fmt.Errorf("failed to delete product %s: %w", productID, err)
	}

	s.mu.Lock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.state = StateLoaded
	s.err = ""
	s.mu.Unlock()

	s.logger.Info("Product deleted", zap.String("product_id", productID))
	if s.events != nil {
		if err := s.events.PublishProductDeleted(ctx, productID); err != nil {
			util.EventPublishFailuresTotal.WithLabelValues("product_deleted").Inc()
			s.logger.Error("Failed to publish product deleted event", zap.Error(err))
		}
	}
	return nil
}

func (s *Products) recordFailure(err error) {
	s.mu.Lock()
	s.state = StateFailed
	s.err = err.Error()
	s.mu.Unlock()
}
