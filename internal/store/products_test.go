package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"admin-dashboard/internal/gateway"
	"admin-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listCall struct {
	page             int
	search, category string
}

type fakeProductAPI struct {
	mu     sync.Mutex
	listFn func(ctx context.Context, page int, search, category string) (models.ProductPage, error)
	calls  []listCall

	createResult models.Product
	createErr    error
	createdWith  models.Product

	updateResult models.Product
	updateErr    error

	deleteErr error

	uploadURLs []string
	uploadErr  error
	uploaded   int
}

func (f *fakeProductAPI) ListProducts(ctx context.Context, page int, search, category string) (models.ProductPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, listCall{page, search, category})
	fn := f.listFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, page, search, category)
	}
	return models.ProductPage{}, nil
}

func (f *fakeProductAPI) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	f.createdWith = p
	if f.createErr != nil {
		return models.Product{}, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeProductAPI) UpdateProduct(_ context.Context, _ models.Product) (models.Product, error) {
	if f.updateErr != nil {
		return models.Product{}, f.updateErr
	}
	return f.updateResult, nil
}

func (f *fakeProductAPI) DeleteProduct(_ context.Context, _ string) error {
	return f.deleteErr
}

func (f *fakeProductAPI) UploadImages(_ context.Context, files []gateway.Upload) ([]string, error) {
	f.uploaded = len(files)
	return f.uploadURLs, f.uploadErr
}

func staticPage(page models.ProductPage) func(context.Context, int, string, string) (models.ProductPage, error) {
	return func(context.Context, int, string, string) (models.ProductPage, error) { return page, nil }
}

func TestRefreshReplacesPageAndCount(t *testing.T) {
	api := &fakeProductAPI{listFn: staticPage(models.ProductPage{
		Products:   []models.Product{{ID: "p1"}, {ID: "p2"}},
		TotalPages: 7,
	})}
	s := NewProducts(api, nil)

	q := Query{Page: 2, Search: "shoe", Category: "men-all"}
	require.NoError(t, s.Refresh(context.Background(), q))

	snap := s.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.Equal(t, 7, snap.TotalPages)
	assert.Equal(t, q, snap.Query)
	assert.Len(t, snap.Products, 2)

	require.Len(t, api.calls, 1)
	assert.Equal(t, listCall{2, "shoe", "men-all"}, api.calls[0])
}

func TestRefreshClampsPageToOne(t *testing.T) {
	api := &fakeProductAPI{listFn: staticPage(models.ProductPage{})}
	s := NewProducts(api, nil)

	require.NoError(t, s.Refresh(context.Background(), Query{Page: 0}))
	assert.Equal(t, 1, api.calls[0].page)
}

func TestRefreshFailureKeepsPriorPage(t *testing.T) {
	api := &fakeProductAPI{listFn: staticPage(models.ProductPage{
		Products:   []models.Product{{ID: "p1"}},
		TotalPages: 3,
	})}
	s := NewProducts(api, nil)
	require.NoError(t, s.Refresh(context.Background(), Query{Page: 1}))

	api.mu.Lock()
	api.listFn = func(context.Context, int, string, string) (models.ProductPage, error) {
		return models.ProductPage{}, &gateway.APIError{Kind: gateway.KindTransport}
	}
	api.mu.Unlock()

	err := s.Refresh(context.Background(), Query{Page: 2})
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "p1", snap.Products[0].ID)
	assert.Equal(t, 3, snap.TotalPages)
}

func TestSupersededRefreshIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	var calls int
	api := &fakeProductAPI{}
	api.listFn = func(ctx context.Context, page int, search, category string) (models.ProductPage, error) {
		api.mu.Lock()
		calls++
		n := calls
		api.mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return models.ProductPage{Products: []models.Product{{ID: "stale"}}, TotalPages: 1}, nil
		}
		return models.ProductPage{Products: []models.Product{{ID: "fresh"}}, TotalPages: 2}, nil
	}

	s := NewProducts(api, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Refresh(context.Background(), Query{Page: 1, Search: "a"})
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first refresh never started")
	}

	require.NoError(t, s.Refresh(context.Background(), Query{Page: 1, Search: "ab"}))

	close(release)
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "fresh", snap.Products[0].ID)
	assert.Equal(t, 2, snap.TotalPages)
	assert.Equal(t, "ab", snap.Query.Search)
}

func TestEditSendsFullRecordAndReplacesEntry(t *testing.T) {
	api := &fakeProductAPI{listFn: staticPage(models.ProductPage{
		Products: []models.Product{{ID: "p1", Name: "old", Stock: 5}},
	})}
	s := NewProducts(api, nil)
	require.NoError(t, s.Refresh(context.Background(), Query{Page: 1}))

	api.updateResult = models.Product{ID: "p1", Name: "new", Stock: 4, Version: 2}
	require.NoError(t, s.Edit(context.Background(), models.Product{ID: "p1", Name: "new", Stock: 4}))

	snap := s.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, api.updateResult, snap.Products[0])
}

func TestDeleteProductFailureLeavesPageUnchanged(t *testing.T) {
	api := &fakeProductAPI{listFn: staticPage(models.ProductPage{
		Products: []models.Product{{ID: "p1"}, {ID: "p2"}},
	})}
	s := NewProducts(api, nil)
	require.NoError(t, s.Refresh(context.Background(), Query{Page: 1}))
	before := s.Snapshot().Products

	api.deleteErr = &gateway.APIError{Kind: gateway.KindServer, StatusCode: 503}
	err := s.Delete(context.Background(), "p2")
	require.Error(t, err)

	assert.Equal(t, before, s.Snapshot().Products)
}

func TestCreateUploadsImagesFirst(t *testing.T) {
	api := &fakeProductAPI{
		uploadURLs:   []string{"https://cdn.example.com/a.jpg"},
		createResult: models.Product{ID: "p9", Name: "sneaker"},
	}
	s := NewProducts(api, nil)

	created, err := s.Create(context.Background(),
		models.Product{Name: "sneaker", Category: "men-all"},
		[]gateway.Upload{{Name: "a.jpg", Content: []byte("jpeg")}})
	require.NoError(t, err)

	assert.Equal(t, "p9", created.ID)
	assert.Equal(t, 1, api.uploaded)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, api.createdWith.ImageURLs)
}

func TestCreateUploadFailureAborts(t *testing.T) {
	api := &fakeProductAPI{uploadErr: &gateway.APIError{Kind: gateway.KindServer, StatusCode: 500}}
	s := NewProducts(api, nil)

	_, err := s.Create(context.Background(), models.Product{Name: "x"},
		[]gateway.Upload{{Name: "a.jpg"}})
	require.Error(t, err)
	assert.Empty(t, api.createdWith.Name, "create must not run after a failed upload")
}
