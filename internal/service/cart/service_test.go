package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

// memBlobs is an in-memory guestcart.Repository. Update holds the mutex
// across the whole read-apply-write, matching the atomicity the Redis
// implementation provides with WATCH.
type memBlobs struct {
	mu     sync.Mutex
	carts  map[string][]domain.LineItem
	getErr error
	setErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{carts: map[string][]domain.LineItem{}}
}

func (m *memBlobs) Get(_ context.Context, ownerID string) ([]domain.LineItem, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.carts[ownerID]
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out, nil
}

func (m *memBlobs) Set(_ context.Context, ownerID string, items []domain.LineItem) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[ownerID] = items
	return nil
}

func (m *memBlobs) Update(_ context.Context, ownerID string, fn func(items []domain.LineItem) ([]domain.LineItem, error)) error {
	if m.getErr != nil {
		return m.getErr
	}
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.carts[ownerID]
	in := make([]domain.LineItem, len(items))
	copy(in, items)
	next, err := fn(in)
	if err != nil {
		return err
	}
	m.carts[ownerID] = next
	return nil
}

func (m *memBlobs) Delete(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, ownerID)
	return nil
}

type stubCatalog struct {
	products map[string]*domain.Product
	err      error
}

func (s *stubCatalog) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type failingBackend struct{}

func (failingBackend) List(context.Context, string) ([]domain.LineItem, error) {
	return nil, errors.New("backend down")
}
func (failingBackend) AddItem(context.Context, domain.LineItem) (*domain.LineItem, error) {
	return nil, errors.New("backend down")
}
func (failingBackend) UpdateQuantity(context.Context, string, string, int) error {
	return errors.New("backend down")
}
func (failingBackend) Remove(context.Context, string, string) error {
	return errors.New("backend down")
}
func (failingBackend) Clear(context.Context, string) error {
	return errors.New("backend down")
}

func testStore(t *testing.T, remote Backend) (*Store, *memBlobs) {
	t.Helper()
	blobs := newMemBlobs()
	catalog := &stubCatalog{products: map[string]*domain.Product{
		"shirt-1": {ID: "shirt-1", Name: "Shirt", PriceCents: 5000, ImageURL: "https://cdn/shirt.jpg"},
		"shoe-2":  {ID: "shoe-2", Name: "Shoe", PriceCents: 12000},
	}}
	if remote == nil {
		remote = NewGuestBackend(newMemBlobs())
	}
	return New(remote, NewGuestBackend(blobs), catalog, pricing.NewCalculator(), nil), blobs
}

func guestSession(t *testing.T, store *Store) *Session {
	t.Helper()
	sess, err := store.Session(context.Background(), domain.Owner{ID: "guest-1", Kind: domain.OwnerGuest})
	require.NoError(t, err)
	return sess
}

func TestSessionRequiresOwner(t *testing.T) {
	store, _ := testStore(t, nil)
	_, err := store.Session(context.Background(), domain.Owner{ID: "  ", Kind: domain.OwnerGuest})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestAddItemValidation(t *testing.T) {
	store, _ := testStore(t, nil)
	sess := guestSession(t, store)

	_, err := sess.AddItem(context.Background(), AddItemInput{ProductID: "", Quantity: 1})
	assert.True(t, domain.IsValidation(err))

	_, err = sess.AddItem(context.Background(), AddItemInput{ProductID: "shirt-1", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = sess.AddItem(context.Background(), AddItemInput{ProductID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddItemSnapshotsCatalogPrice(t *testing.T) {
	store, _ := testStore(t, nil)
	sess := guestSession(t, store)

	item, err := sess.AddItem(context.Background(), AddItemInput{ProductID: "shirt-1", Quantity: 2, Size: "M", Color: "Blue"})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, int64(5000), item.UnitPriceCents)
	assert.Equal(t, "Shirt", item.Name)
	assert.Equal(t, "https://cdn/shirt.jpg", item.ImageURL)
	assert.Equal(t, 2, item.Quantity)
}

func TestAddItemConsolidatesByNaturalKey(t *testing.T) {
	store, _ := testStore(t, nil)
	sess := guestSession(t, store)
	ctx := context.Background()

	first, err := sess.AddItem(ctx, AddItemInput{ProductID: "shirt-1", Quantity: 2, Size: "M", Color: "Blue"})
	require.NoError(t, err)

	second, err := sess.AddItem(ctx, AddItemInput{ProductID: "shirt-1", Quantity: 1, Size: "M", Color: "Blue"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)

	// A different variant of the same product stays a separate line.
	_, err = sess.AddItem(ctx, AddItemInput{ProductID: "shirt-1", Quantity: 1, Size: "L", Color: "Blue"})
	require.NoError(t, err)

	view, err := sess.List(ctx)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
}

func TestUpdateQuantityFloor(t *testing.T) {
	store, _ := testStore(t, nil)
	sess := guestSession(t, store)
	ctx := context.Background()

	item, err := sess.AddItem(ctx, AddItemInput{ProductID: "shirt-1", Quantity: 2})
	require.NoError(t, err)

	assert.ErrorIs(t, sess.UpdateQuantity(ctx, item.ID, 0), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, sess.UpdateQuantity(ctx, item.ID, -1), domain.ErrInvalidQuantity)

	view, err := sess.List(ctx)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity, "rejected updates must leave quantity unchanged")

	require.NoError(t, sess.UpdateQuantity(ctx, item.ID, 5))
	view, err = sess.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestUpdateQuantityUnknownID(t *testing.T) {
	store, _ := testStore(t, nil)
	sess := guestSession(t, store)
	err := sess.UpdateQuantity(context.Background(), "nope", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveItemIdempotent(t *testing.T) {
	store, _ := testStore(t, nil)
	sess := guestSession(t, store)
	ctx := context.Background()

	item, err := sess.AddItem(ctx, AddItemInput{ProductID: "shirt-1", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, sess.RemoveItem(ctx, item.ID))
	require.NoError(t, sess.RemoveItem(ctx, item.ID), "second removal of an absent id must be a no-op")

	view, err := sess.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestListComputesPricing(t *testing.T) {
	store, _ := testStore(t, nil)
	sess := guestSession(t, store)
	ctx := context.Background()

	_, err := sess.AddItem(ctx, AddItemInput{ProductID: "shirt-1", Quantity: 2})
	require.NoError(t, err)
	_, err = sess.AddItem(ctx, AddItemInput{ProductID: "shoe-2", Quantity: 1})
	require.NoError(t, err)

	view, err := sess.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(22000), view.Pricing.SubtotalCents)
	assert.Equal(t, int64(0), view.Pricing.ShippingCents, "22000 >= free shipping threshold")
	assert.Equal(t, int64(22000), view.Pricing.TotalCents)
}

func TestClear(t *testing.T) {
	store, _ := testStore(t, nil)
	sess := guestSession(t, store)
	ctx := context.Background()

	_, err := sess.AddItem(ctx, AddItemInput{ProductID: "shirt-1", Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, sess.Clear(ctx))

	view, err := sess.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCustomerSessionUsesRemote(t *testing.T) {
	remoteBlobs := newMemBlobs()
	remote := NewGuestBackend(remoteBlobs)
	store, guestBlobs := testStore(t, remote)

	sess, err := store.Session(context.Background(), domain.Owner{ID: "cust-1", Kind: domain.OwnerCustomer})
	require.NoError(t, err)
	assert.False(t, sess.Fallback())

	_, err = sess.AddItem(context.Background(), AddItemInput{ProductID: "shirt-1", Quantity: 1})
	require.NoError(t, err)

	assert.Len(t, remoteBlobs.carts["cust-1"], 1)
	assert.Empty(t, guestBlobs.carts["cust-1"])
}

func TestCustomerSessionFallsBackToGuestOnce(t *testing.T) {
	store, guestBlobs := testStore(t, failingBackend{})

	sess, err := store.Session(context.Background(), domain.Owner{ID: "cust-1", Kind: domain.OwnerCustomer})
	require.NoError(t, err, "session creation survives a dead remote")
	assert.True(t, sess.Fallback(), "degraded sessions must report it")

	_, err = sess.AddItem(context.Background(), AddItemInput{ProductID: "shirt-1", Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, guestBlobs.carts["cust-1"], 1, "operations run against the guest backend after fallback")
}

func TestGuestBackendConcurrentAddsConsolidate(t *testing.T) {
	store, blobs := testStore(t, nil)
	ctx := context.Background()

	sess := guestSession(t, store)

	const adds = 16
	var wg sync.WaitGroup
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sess.AddItem(ctx, AddItemInput{ProductID: "shirt-1", Quantity: 1, Size: "M", Color: "Blue"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items := blobs.carts["guest-1"]
	require.Len(t, items, 1, "racing adds of the same variant must never duplicate the line")
	assert.Equal(t, adds, items[0].Quantity, "no increment may be lost")
}
