package httpserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/pricing"
	tokenrepo "storefront/internal/repository/token"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/cartmerge"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
)

// memProducts is a fixed catalog for handler tests.
type memProducts struct {
	products map[string]domain.Product
}

func newMemProducts() *memProducts {
	return &memProducts{products: map[string]domain.Product{
		"prod-shirt": {ID: "prod-shirt", SKU: "SHIRT-1", Name: "Linen Shirt", Category: "shirts", PriceCents: 5000, Sizes: []string{"S", "M", "L"}},
		"prod-shoe":  {ID: "prod-shoe", SKU: "SHOE-1", Name: "Canvas Shoe", Category: "shoes", PriceCents: 12000},
	}}
}

func (m *memProducts) List(_ context.Context, category string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.SKU == sku {
			out := p
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memProducts) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	m.products[p.ID] = p
	return &p, nil
}

// memBackend is an in-memory stand-in for the database cart backend.
type memBackend struct {
	mu    sync.Mutex
	lines map[string][]domain.LineItem
	seq   int
}

func newMemBackend() *memBackend {
	return &memBackend{lines: map[string][]domain.LineItem{}}
}

func (m *memBackend) List(_ context.Context, ownerID string) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LineItem, len(m.lines[ownerID]))
	copy(out, m.lines[ownerID])
	return out, nil
}

func (m *memBackend) AddItem(_ context.Context, item domain.LineItem) (*domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.lines[item.OwnerID]
	for i := range lines {
		if lines[i].Key() == item.Key() {
			lines[i].Quantity += item.Quantity
			out := lines[i]
			return &out, nil
		}
	}
	m.seq++
	item.ID = fmt.Sprintf("line-%d", m.seq)
	item.CreatedAt = time.Now()
	m.lines[item.OwnerID] = append(lines, item)
	out := item
	return &out, nil
}

func (m *memBackend) UpdateQuantity(_ context.Context, ownerID, id string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.lines[ownerID]
	for i := range lines {
		if lines[i].ID == id {
			lines[i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memBackend) Remove(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.lines[ownerID]
	for i := range lines {
		if lines[i].ID == id {
			m.lines[ownerID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memBackend) Clear(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines, ownerID)
	return nil
}

// memBlobs is an in-memory guest cart blob store.
type memBlobs struct {
	mu    sync.Mutex
	blobs map[string][]domain.LineItem
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: map[string][]domain.LineItem{}}
}

func (m *memBlobs) Get(_ context.Context, ownerID string) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LineItem, len(m.blobs[ownerID]))
	copy(out, m.blobs[ownerID])
	return out, nil
}

func (m *memBlobs) Set(_ context.Context, ownerID string, items []domain.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]domain.LineItem, len(items))
	copy(stored, items)
	m.blobs[ownerID] = stored
	return nil
}

func (m *memBlobs) Update(_ context.Context, ownerID string, fn func(items []domain.LineItem) ([]domain.LineItem, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := make([]domain.LineItem, len(m.blobs[ownerID]))
	copy(in, m.blobs[ownerID])
	next, err := fn(in)
	if err != nil {
		return err
	}
	m.blobs[ownerID] = next
	return nil
}

func (m *memBlobs) Delete(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, ownerID)
	return nil
}

// memOrders is an in-memory order repository.
type memOrders struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	seq    int
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[string]domain.Order{}}
}

func (m *memOrders) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	o.ID = fmt.Sprintf("ord-%d", m.seq)
	o.CreatedAt = time.Now()
	m.orders[o.ID] = o
	out := o
	return &out, nil
}

func (m *memOrders) GetByID(_ context.Context, customerID, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	out := o
	return &out, nil
}

func (m *memOrders) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) UpdatePaymentStatus(_ context.Context, id, from, to, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.PaymentStatus != from {
		return domain.ErrInvalidTransition
	}
	o.PaymentStatus = to
	if ref != "" {
		o.PaymentRef = ref
	}
	m.orders[id] = o
	return nil
}

func (m *memOrders) SetPaymentRef(_ context.Context, id, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.PaymentRef = ref
	m.orders[id] = o
	return nil
}

// memCustomers is an in-memory customer repository.
type memCustomers struct {
	mu      sync.Mutex
	byEmail map[string]domain.Customer
	seq     int
}

func newMemCustomers() *memCustomers {
	return &memCustomers{byEmail: map[string]domain.Customer{}}
}

func (m *memCustomers) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[c.Email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	m.seq++
	c.ID = fmt.Sprintf("cust-%d", m.seq)
	c.CreatedAt = time.Now()
	m.byEmail[c.Email] = c
	out := c
	return &out, nil
}

func (m *memCustomers) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := c
	return &out, nil
}

func (m *memCustomers) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byEmail {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// memTokens is an in-memory refresh token repository.
type memTokens struct {
	mu     sync.Mutex
	tokens map[string]tokenrepo.RefreshToken
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: map[string]tokenrepo.RefreshToken{}}
}

func (m *memTokens) Create(_ context.Context, t tokenrepo.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	m.tokens[t.Token] = t
	return nil
}

func (m *memTokens) Get(_ context.Context, token string) (*tokenrepo.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memTokens) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

// stubCardProvider stands in for the card processor.
type stubCardProvider struct{}

func (stubCardProvider) CreateIntent(_ context.Context, o domain.Order) (*payment.Intent, error) {
	return &payment.Intent{Reference: "pi_test_" + o.ID, ClientSecret: "secret_" + o.ID}, nil
}

type fixture struct {
	router *gin.Engine
	blobs  *memBlobs
	remote *memBackend
	orders *memOrders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtMgr := auth.NewManager("test-secret", "storefront", time.Hour)
	products := newMemProducts()
	remote := newMemBackend()
	blobs := newMemBlobs()
	calc := pricing.NewCalculator()

	store := cartsvc.New(remote, cartsvc.NewGuestBackend(blobs), products, calc, zap.NewNop())
	merge := cartmerge.New(blobs, store, zap.NewNop())

	orders := newMemOrders()
	payments := payment.NewRegistry()
	payments.Register(domain.PaymentMethodCard, stubCardProvider{})
	offline := payment.NewOffline()
	payments.Register(domain.PaymentMethodPix, offline)
	payments.Register(domain.PaymentMethodBankTransfer, offline)
	payments.Register(domain.PaymentMethodOnDelivery, offline)
	checkout := checkoutsvc.New(store, orders, payments, calc, 5, zap.NewNop())

	customers := customersvc.New(newMemCustomers(), newMemTokens(), jwtMgr, 24*time.Hour)

	router, err := buildRouter(zap.NewNop(), nil, Deps{
		Auth:      jwtMgr,
		Catalog:   catalogsvc.New(products),
		Carts:     store,
		Merge:     merge,
		Checkout:  checkout,
		Customers: customers,
	})
	require.NoError(t, err)

	return &fixture{router: router, blobs: blobs, remote: remote, orders: orders}
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}
