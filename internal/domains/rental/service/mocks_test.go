package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	bookmodel "biblioconnect-backend/internal/domains/book/model"
	"biblioconnect-backend/internal/domains/rental/gateway"
	"biblioconnect-backend/internal/domains/rental/model"
	"biblioconnect-backend/internal/domains/rental/repository"
)

// =====================================================
// IN-MEMORY LEDGER
// =====================================================

// memLedger backs repository.Repository with maps. WithinTx serializes
// callers with a mutex; rollback is not simulated, which is fine here
// because the service only mutates after its checks pass.
type memLedger struct {
	mu       sync.Mutex
	rentals  map[uuid.UUID]*model.Rental
	books    map[uuid.UUID]*bookmodel.Book
	invoices map[uuid.UUID]*model.Invoice // keyed by rental ID
	renters  map[uuid.UUID]*model.Renter
}

func newMemLedger() *memLedger {
	return &memLedger{
		rentals:  make(map[uuid.UUID]*model.Rental),
		books:    make(map[uuid.UUID]*bookmodel.Book),
		invoices: make(map[uuid.UUID]*model.Invoice),
		renters:  make(map[uuid.UUID]*model.Renter),
	}
}

var _ repository.Repository = (*memLedger)(nil)

func (m *memLedger) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func (m *memLedger) GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	r, ok := m.rentals[id]
	if !ok {
		return nil, model.ErrRentalNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memLedger) GetRentalForUpdate(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	return m.GetRental(ctx, id)
}

func (m *memLedger) GetByPaymentRef(ctx context.Context, ref string) (*model.Rental, error) {
	for _, r := range m.rentals {
		if r.PaymentRef != nil && *r.PaymentRef == ref {
			cp := *r
			return &cp, nil
		}
	}
	return nil, model.ErrRentalNotFound
}

func (m *memLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Rental, error) {
	var out []*model.Rental
	for _, r := range m.rentals {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memLedger) CountPendingByBook(ctx context.Context, bookID uuid.UUID) (int, error) {
	count := 0
	for _, r := range m.rentals {
		if r.BookID == bookID && r.Status == model.StatusPendingPayment {
			count++
		}
	}
	return count, nil
}

func (m *memLedger) InsertRental(ctx context.Context, rental *model.Rental) error {
	for _, r := range m.rentals {
		if r.UserID == rental.UserID && r.BookID == rental.BookID && !r.Status.IsTerminal() {
			return model.ErrAlreadyBorrowed
		}
	}
	cp := *rental
	m.rentals[rental.ID] = &cp
	return nil
}

func (m *memLedger) UpdateRental(ctx context.Context, rental *model.Rental) error {
	if _, ok := m.rentals[rental.ID]; !ok {
		return model.ErrRentalNotFound
	}
	cp := *rental
	m.rentals[rental.ID] = &cp
	return nil
}

func (m *memLedger) GetBookForUpdate(ctx context.Context, bookID uuid.UUID) (*bookmodel.Book, error) {
	b, ok := m.books[bookID]
	if !ok {
		return nil, bookmodel.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memLedger) AdjustAvailable(ctx context.Context, bookID uuid.UUID, delta int) error {
	b, ok := m.books[bookID]
	if !ok {
		return bookmodel.ErrBookNotFound
	}
	next := b.AvailableCopies + delta
	if next < 0 || next > b.TotalCopies {
		return model.ErrNotAvailable
	}
	b.AvailableCopies = next
	return nil
}

func (m *memLedger) InsertInvoice(ctx context.Context, invoice *model.Invoice) error {
	if _, ok := m.invoices[invoice.RentalID]; ok {
		return nil
	}
	cp := *invoice
	m.invoices[invoice.RentalID] = &cp
	return nil
}

func (m *memLedger) GetInvoice(ctx context.Context, rentalID uuid.UUID) (*model.Invoice, error) {
	inv, ok := m.invoices[rentalID]
	if !ok {
		return nil, model.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memLedger) GetRenter(ctx context.Context, userID uuid.UUID) (*model.Renter, error) {
	r, ok := m.renters[userID]
	if !ok {
		return nil, fmt.Errorf("no user row for %s", userID)
	}
	cp := *r
	return &cp, nil
}

func (m *memLedger) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*model.Rental, error) {
	var out []*model.Rental
	for _, r := range m.rentals {
		if r.Status == model.StatusPendingPayment && r.CreatedAt.Before(cutoff) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// =====================================================
// BOOK REPOSITORY SHIM
// =====================================================

// memBooks exposes the ledger's book map through the catalog interface.
type memBooks struct {
	ledger *memLedger
}

func (m *memBooks) Create(ctx context.Context, book *bookmodel.Book) error {
	cp := *book
	m.ledger.books[book.ID] = &cp
	return nil
}

func (m *memBooks) GetByID(ctx context.Context, id uuid.UUID) (*bookmodel.Book, error) {
	b, ok := m.ledger.books[id]
	if !ok {
		return nil, bookmodel.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBooks) List(ctx context.Context) ([]*bookmodel.Book, error) {
	var out []*bookmodel.Book
	for _, b := range m.ledger.books {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memBooks) UpdateCoverSource(ctx context.Context, id uuid.UUID, coverURL string) error {
	return nil
}

// =====================================================
// GATEWAY MOCK
// =====================================================

type mockGateway struct {
	mu          sync.Mutex
	startCalls  int
	startErr    error
	statuses    map[string]gateway.Outcome
	statusErr   error
	callback    *gateway.Callback
	callbackErr error
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		statuses: make(map[string]gateway.Outcome),
	}
}

func (g *mockGateway) StartSession(ctx context.Context, req gateway.SessionRequest) (*gateway.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.startCalls++
	if g.startErr != nil {
		return nil, g.startErr
	}
	ref := fmt.Sprintf("pay-%d", g.startCalls)
	return &gateway.Session{
		PaymentRef: ref,
		PaymentURL: "http://pay.example/s/" + ref,
	}, nil
}

func (g *mockGateway) QueryStatus(ctx context.Context, ref string) (gateway.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statusErr != nil {
		return "", g.statusErr
	}
	out, ok := g.statuses[ref]
	if !ok {
		return gateway.OutcomePending, nil
	}
	return out, nil
}

func (g *mockGateway) ParseCallback(body []byte, signature string) (*gateway.Callback, error) {
	if g.callbackErr != nil {
		return nil, g.callbackErr
	}
	return g.callback, nil
}

// =====================================================
// CACHE STUB
// =====================================================

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, keys ...string) error        { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (noopCache) Ping(ctx context.Context) error                          { return nil }
