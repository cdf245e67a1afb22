package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"vitrine/internal/domain"
	"vitrine/internal/repository"
	"vitrine/internal/storage"
)

func setupCatalog(t *testing.T) (context.Context, *CatalogService) {
	t.Helper()
	store := repository.NewLocalStore(storage.NewMemKV())
	return context.Background(), NewCatalogService(store)
}

func validProduct() domain.Product {
	return domain.Product{
		Name:    "iPhone 13",
		Model:   "13",
		Storage: 128,
		Color:   "Midnight",
		Amount:  10,
		Price:   decimal.RequireFromString("599.99"),
		Img:     "assets/images/iphone-13.png",
	}
}

func TestCatalog_Create_Valid(t *testing.T) {
	ctx, svc := setupCatalog(t)
	p, err := svc.Create(ctx, validProduct())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("expected id assigned")
	}
	if p.MaxAmount != p.Amount {
		t.Fatalf("new product ceiling expected %d, got %d", p.Amount, p.MaxAmount)
	}
}

func TestCatalog_Create_Invalid(t *testing.T) {
	ctx, svc := setupCatalog(t)

	cases := map[string]func(*domain.Product){
		"empty name":      func(p *domain.Product) { p.Name = "" },
		"empty model":     func(p *domain.Product) { p.Model = "" },
		"empty color":     func(p *domain.Product) { p.Color = "" },
		"missing image":   func(p *domain.Product) { p.Img = "" },
		"negative amount": func(p *domain.Product) { p.Amount = -1 },
		"negative price":  func(p *domain.Product) { p.Price = decimal.NewFromInt(-1) },
		"negative size":   func(p *domain.Product) { p.Storage = -1 },
	}
	for name, mutate := range cases {
		p := validProduct()
		mutate(&p)
		if _, err := svc.Create(ctx, p); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestCatalog_Update_KeepsImageWhenEmpty(t *testing.T) {
	ctx, svc := setupCatalog(t)
	created, err := svc.Create(ctx, validProduct())
	if err != nil {
		t.Fatal(err)
	}

	upd := *created
	upd.Name = "iPhone 13 (refurbished)"
	upd.Img = ""
	got, err := svc.Update(ctx, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "iPhone 13 (refurbished)" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if got.Img != created.Img {
		t.Fatalf("image expected kept, got %q", got.Img)
	}
}

func TestCatalog_Update_DoesNotTouchCeiling(t *testing.T) {
	ctx, svc := setupCatalog(t)
	created, err := svc.Create(ctx, validProduct())
	if err != nil {
		t.Fatal(err)
	}

	upd := *created
	upd.Amount = 3
	got, err := svc.Update(ctx, upd)
	if err != nil {
		t.Fatal(err)
	}
	if got.Amount != 3 {
		t.Fatalf("amount expected 3, got %d", got.Amount)
	}
	if got.MaxAmount != created.MaxAmount {
		t.Fatalf("ceiling changed by edit: %d", got.MaxAmount)
	}
}

func TestCatalog_Update_NotFound(t *testing.T) {
	ctx, svc := setupCatalog(t)
	p := validProduct()
	p.ID = 42
	if _, err := svc.Update(ctx, p); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalog_Delete(t *testing.T) {
	ctx, svc := setupCatalog(t)
	created, err := svc.Create(ctx, validProduct())
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero id, got %v", err)
	}
}

func TestCatalog_Reset_RestoresSeed(t *testing.T) {
	ctx, svc := setupCatalog(t)
	if _, err := svc.Create(ctx, validProduct()); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	list, err := svc.List(ctx, repository.ProductFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) == 0 {
		t.Fatalf("seed catalog expected after reset")
	}
}
