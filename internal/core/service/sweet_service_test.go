package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

type stubSweetRepo struct {
	sweets map[string]*domain.Sweet // by id
	nextID int
}

func newStubSweetRepo() *stubSweetRepo {
	return &stubSweetRepo{sweets: make(map[string]*domain.Sweet)}
}

func cloneSweet(s *domain.Sweet) *domain.Sweet {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

func (r *stubSweetRepo) Create(_ context.Context, sweet *domain.Sweet) (*domain.Sweet, error) {
	for _, existing := range r.sweets {
		if existing.Name == sweet.Name {
			return nil, domain.ErrSweetExists
		}
	}
	r.nextID++
	created := cloneSweet(sweet)
	created.ID = "sweet-" + strconv.Itoa(r.nextID)
	r.sweets[created.ID] = cloneSweet(created)
	return created, nil
}

func (r *stubSweetRepo) FindByID(_ context.Context, id string) (*domain.Sweet, error) {
	if s, ok := r.sweets[id]; ok {
		return cloneSweet(s), nil
	}
	return nil, domain.ErrSweetNotFound
}

func (r *stubSweetRepo) List(_ context.Context) ([]*domain.Sweet, error) {
	out := make([]*domain.Sweet, 0, len(r.sweets))
	for _, s := range r.sweets {
		out = append(out, cloneSweet(s))
	}
	return out, nil
}

func (r *stubSweetRepo) Search(_ context.Context, filter ports.SearchSweetsFilter) ([]*domain.Sweet, error) {
	out := make([]*domain.Sweet, 0)
	for _, s := range r.sweets {
		if filter.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Category != "" && !strings.Contains(strings.ToLower(s.Category), strings.ToLower(filter.Category)) {
			continue
		}
		if filter.MinPrice != nil && s.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && s.Price > *filter.MaxPrice {
			continue
		}
		out = append(out, cloneSweet(s))
	}
	return out, nil
}

func (r *stubSweetRepo) Update(_ context.Context, id string, input ports.UpdateSweetInput) (*domain.Sweet, error) {
	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	if input.Name != nil && *input.Name != s.Name {
		for _, other := range r.sweets {
			if other.ID != id && other.Name == *input.Name {
				return nil, domain.ErrSweetExists
			}
		}
		s.Name = *input.Name
	}
	if input.Category != nil {
		s.Category = *input.Category
	}
	if input.Price != nil {
		s.Price = *input.Price
	}
	if input.Quantity != nil {
		s.Quantity = *input.Quantity
	}
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.sweets[id]; !ok {
		return domain.ErrSweetNotFound
	}
	delete(r.sweets, id)
	return nil
}

func (r *stubSweetRepo) DecrementQuantity(_ context.Context, id string, n int64) (*domain.Sweet, error) {
	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	if s.Quantity < n {
		return nil, domain.ErrInsufficientStock
	}
	s.Quantity -= n
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) IncrementQuantity(_ context.Context, id string, n int64) (*domain.Sweet, error) {
	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	s.Quantity += n
	return cloneSweet(s), nil
}

type stubDedup struct {
	marked map[string]bool
}

func newStubDedup() *stubDedup {
	return &stubDedup{marked: make(map[string]bool)}
}

func (d *stubDedup) Seen(_ context.Context, key string) (bool, error) {
	return d.marked[key], nil
}

func (d *stubDedup) Mark(_ context.Context, key string) error {
	d.marked[key] = true
	return nil
}

func newSweetService(repo ports.SweetRepository, dedup DedupChecker) *SweetService {
	return NewSweetService(repo, dedup, zerolog.Nop())
}

func mustCreate(t *testing.T, svc *SweetService, input ports.CreateSweetInput) *domain.Sweet {
	t.Helper()
	sweet, err := svc.CreateSweet(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateSweet failed: %v", err)
	}
	return sweet
}

func TestSweetService_Create_RoundTrip(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newSweetService(repo, nil)

	created := mustCreate(t, svc, ports.CreateSweetInput{Name: "Chocolate Cake", Category: "Cakes", Price: 15.99, Quantity: 10})

	got, err := svc.GetSweet(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetSweet failed: %v", err)
	}
	if got.Name != "Chocolate Cake" || got.Category != "Cakes" || got.Price != 15.99 || got.Quantity != 10 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSweetService_Create_Validation(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	cases := []ports.CreateSweetInput{
		{Name: "", Category: "Cakes", Price: 1, Quantity: 1},
		{Name: "Fudge", Category: "", Price: 1, Quantity: 1},
		{Name: "Fudge", Category: "Candy", Price: -0.01, Quantity: 1},
		{Name: "Fudge", Category: "Candy", Price: 1, Quantity: -1},
	}
	for i, input := range cases {
		if _, err := svc.CreateSweet(ctx, input); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestSweetService_Create_DuplicateName(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)

	mustCreate(t, svc, ports.CreateSweetInput{Name: "Fudge", Category: "Candy", Price: 2, Quantity: 5})
	if _, err := svc.CreateSweet(context.Background(), ports.CreateSweetInput{Name: "Fudge", Category: "Other", Price: 3, Quantity: 1}); !errors.Is(err, domain.ErrSweetExists) {
		t.Fatalf("expected ErrSweetExists, got %v", err)
	}
}

func TestSweetService_Update_Partial(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	created := mustCreate(t, svc, ports.CreateSweetInput{Name: "Fudge", Category: "Candy", Price: 2.50, Quantity: 5})

	newPrice := 3.25
	updated, err := svc.UpdateSweet(context.Background(), created.ID, ports.UpdateSweetInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("UpdateSweet failed: %v", err)
	}
	if updated.Price != 3.25 {
		t.Fatalf("price not updated: %v", updated.Price)
	}
	// Unspecified fields keep their current value.
	if updated.Name != "Fudge" || updated.Category != "Candy" || updated.Quantity != 5 {
		t.Fatalf("partial update clobbered other fields: %+v", updated)
	}
}

func TestSweetService_Update_Empty_NoOp(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	created := mustCreate(t, svc, ports.CreateSweetInput{Name: "Fudge", Category: "Candy", Price: 2.50, Quantity: 5})

	updated, err := svc.UpdateSweet(context.Background(), created.ID, ports.UpdateSweetInput{})
	if err != nil {
		t.Fatalf("empty update should be a no-op success, got %v", err)
	}
	if updated.Name != created.Name || updated.Price != created.Price || updated.Quantity != created.Quantity {
		t.Fatalf("no-op update changed the record: %+v", updated)
	}
}

func TestSweetService_Update_Validation(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	created := mustCreate(t, svc, ports.CreateSweetInput{Name: "Fudge", Category: "Candy", Price: 2.50, Quantity: 5})
	ctx := context.Background()

	negPrice := -1.0
	if _, err := svc.UpdateSweet(ctx, created.ID, ports.UpdateSweetInput{Price: &negPrice}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative price, got %v", err)
	}
	negQty := int64(-1)
	if _, err := svc.UpdateSweet(ctx, created.ID, ports.UpdateSweetInput{Quantity: &negQty}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative quantity, got %v", err)
	}
	empty := ""
	if _, err := svc.UpdateSweet(ctx, created.ID, ports.UpdateSweetInput{Name: &empty}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
}

func TestSweetService_Purchase_DecrementsStock(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	created := mustCreate(t, svc, ports.CreateSweetInput{Name: "Fudge", Category: "Candy", Price: 2, Quantity: 5})

	result, err := svc.Purchase(context.Background(), ports.PurchaseInput{ID: created.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if result.Sweet.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", result.Sweet.Quantity)
	}
	if result.Message != "Successfully purchased 2 Fudge(s)" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

// A rejected purchase must leave the stock level untouched.
func TestSweetService_Purchase_InsufficientStock(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newSweetService(repo, nil)
	created := mustCreate(t, svc, ports.CreateSweetInput{Name: "Fudge", Category: "Candy", Price: 2, Quantity: 5})

	if _, err := svc.Purchase(context.Background(), ports.PurchaseInput{ID: created.ID, Quantity: 6}); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	got, err := svc.GetSweet(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetSweet failed: %v", err)
	}
	if got.Quantity != 5 {
		t.Fatalf("failed purchase changed quantity: %d", got.Quantity)
	}

	// Draining the remaining stock exactly is allowed.
	result, err := svc.Purchase(context.Background(), ports.PurchaseInput{ID: created.ID, Quantity: 5})
	if err != nil {
		t.Fatalf("exact-stock purchase failed: %v", err)
	}
	if result.Sweet.Quantity != 0 {
		t.Fatalf("expected quantity 0, got %d", result.Sweet.Quantity)
	}
}

func TestSweetService_Purchase_Validation(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	if _, err := svc.Purchase(ctx, ports.PurchaseInput{ID: "sweet-1", Quantity: 0}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero quantity, got %v", err)
	}
	if _, err := svc.Purchase(ctx, ports.PurchaseInput{ID: "sweet-1", Quantity: -3}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative quantity, got %v", err)
	}
	if _, err := svc.Purchase(ctx, ports.PurchaseInput{ID: "missing", Quantity: 1}); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
}

func TestSweetService_Purchase_IdempotentReplay(t *testing.T) {
	repo := newStubSweetRepo()
	dedup := newStubDedup()
	svc := newSweetService(repo, dedup)
	created := mustCreate(t, svc, ports.CreateSweetInput{Name: "Fudge", Category: "Candy", Price: 2, Quantity: 5})

	input := ports.PurchaseInput{ID: created.ID, Quantity: 2, IdempotencyKey: "order-42"}
	if _, err := svc.Purchase(context.Background(), input); err != nil {
		t.Fatalf("first purchase failed: %v", err)
	}

	replay, err := svc.Purchase(context.Background(), input)
	if err != nil {
		t.Fatalf("replayed purchase failed: %v", err)
	}
	if replay.Sweet.Quantity != 3 {
		t.Fatalf("replay decremented stock again: %d", replay.Sweet.Quantity)
	}
}

func TestSweetService_Restock(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	created := mustCreate(t, svc, ports.CreateSweetInput{Name: "Fudge", Category: "Candy", Price: 2, Quantity: 5})
	ctx := context.Background()

	result, err := svc.Restock(ctx, created.ID, 7)
	if err != nil {
		t.Fatalf("Restock failed: %v", err)
	}
	if result.Sweet.Quantity != 12 {
		t.Fatalf("expected quantity 12, got %d", result.Sweet.Quantity)
	}
	if result.Message != "Successfully restocked 7 Fudge(s)" {
		t.Fatalf("unexpected message: %q", result.Message)
	}

	if _, err := svc.Restock(ctx, created.ID, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero quantity, got %v", err)
	}
	if _, err := svc.Restock(ctx, "missing", 1); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
}

func TestSweetService_Search_PriceRange(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	ctx := context.Background()

	mustCreate(t, svc, ports.CreateSweetInput{Name: "Toffee", Category: "Candy", Price: 3, Quantity: 1})
	mustCreate(t, svc, ports.CreateSweetInput{Name: "Chocolate Cake", Category: "Cakes", Price: 7.5, Quantity: 1})
	mustCreate(t, svc, ports.CreateSweetInput{Name: "Wedding Cake", Category: "Cakes", Price: 120, Quantity: 1})

	min, max := 5.0, 10.0
	results, err := svc.SearchSweets(ctx, ports.SearchSweetsFilter{MinPrice: &min, MaxPrice: &max})
	if err != nil {
		t.Fatalf("SearchSweets failed: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Chocolate Cake" {
		t.Fatalf("expected only Chocolate Cake in [5,10], got %+v", results)
	}

	// Bounds are inclusive.
	min, max = 3.0, 7.5
	results, err = svc.SearchSweets(ctx, ports.SearchSweetsFilter{MinPrice: &min, MaxPrice: &max})
	if err != nil {
		t.Fatalf("SearchSweets failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results for inclusive bounds, got %d", len(results))
	}

	// name + category criteria are ANDed.
	results, err = svc.SearchSweets(ctx, ports.SearchSweetsFilter{Name: "cake", Category: "cakes", MinPrice: &min})
	if err != nil {
		t.Fatalf("SearchSweets failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 cake matches, got %d", len(results))
	}

	badMin, badMax := 10.0, 5.0
	if _, err := svc.SearchSweets(ctx, ports.SearchSweetsFilter{MinPrice: &badMin, MaxPrice: &badMax}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted range, got %v", err)
	}
}

func TestSweetService_Delete(t *testing.T) {
	svc := newSweetService(newStubSweetRepo(), nil)
	created := mustCreate(t, svc, ports.CreateSweetInput{Name: "Fudge", Category: "Candy", Price: 2, Quantity: 5})
	ctx := context.Background()

	if err := svc.DeleteSweet(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSweet failed: %v", err)
	}
	if _, err := svc.GetSweet(ctx, created.ID); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound after delete, got %v", err)
	}
	if err := svc.DeleteSweet(ctx, created.ID); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound for second delete, got %v", err)
	}
}
