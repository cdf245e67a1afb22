package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vitrine/internal/domain"
	"vitrine/internal/storage"
)

func newProduct(name, model string, gb int64, color string, amount int64, price string) domain.Product {
	return domain.Product{
		Name:      name,
		Model:     model,
		Storage:   gb,
		Color:     color,
		Amount:    amount,
		MaxAmount: amount,
		Price:     decimal.RequireFromString(price),
		Img:       "assets/images/" + name + ".png",
	}
}

func TestLocalStore_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(storage.NewMemKV())

	p := newProduct("iPhone 13", "13", 128, "Midnight", 5, "599.99")
	if err := store.AddProduct(ctx, &p); err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("no id")
	}

	got, err := store.ProductByID(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("get: %v", err)
	}

	p.Amount = 3
	if err := store.UpdateProduct(ctx, &p); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.ProductByID(ctx, p.ID)
	if got.Amount != 3 {
		t.Fatalf("amount expected 3, got %d", got.Amount)
	}

	if err := store.RemoveProduct(ctx, p.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.ProductByID(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found")
	}
}

func TestLocalStore_AddProduct_AssignsLastIDPlusOne(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(storage.NewMemKV())

	a := newProduct("A", "13", 128, "Black", 1, "1")
	b := newProduct("B", "14", 128, "Blue", 1, "2")
	if err := store.AddProduct(ctx, &a); err != nil {
		t.Fatal(err)
	}
	if err := store.AddProduct(ctx, &b); err != nil {
		t.Fatal(err)
	}
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("ids expected 1,2; got %d,%d", a.ID, b.ID)
	}

	// id считается от последнего элемента, а не от максимума
	if err := store.RemoveProduct(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	c := newProduct("C", "15", 128, "Pink", 1, "3")
	if err := store.AddProduct(ctx, &c); err != nil {
		t.Fatal(err)
	}
	if c.ID != 3 {
		t.Fatalf("id expected 3, got %d", c.ID)
	}
}

func TestLocalStore_WriteThroughReload(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemKV()
	store := NewLocalStore(kv)

	p := newProduct("iPhone 14", "14", 256, "Blue", 7, "899.99")
	if err := store.AddProduct(ctx, &p); err != nil {
		t.Fatal(err)
	}
	cart := NewLocalCart(store)
	item := domain.CartItem{Product: p, Quantity: 2}
	if err := cart.Add(ctx, item); err != nil {
		t.Fatal(err)
	}
	orders := NewLocalOrders(store)
	line := domain.OrderLine{ID: p.ID, Name: p.Name, Quantity: 2, Price: p.Price, Date: time.Now().UTC()}
	if err := orders.Append(ctx, []domain.OrderLine{line}); err != nil {
		t.Fatal(err)
	}

	// второй экземпляр поверх того же хранилища видит всё состояние
	reloaded := NewLocalStore(kv)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := reloaded.ProductByID(ctx, p.ID)
	if err != nil || got.Amount != 7 {
		t.Fatalf("product not reloaded: %v", err)
	}
	items, _ := NewLocalCart(reloaded).Items(ctx)
	if len(items) != 1 || items[0].Quantity != 2 || items[0].ID != p.ID {
		t.Fatalf("cart not reloaded: %+v", items)
	}
	lines, _ := NewLocalOrders(reloaded).Orders(ctx)
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("orders not reloaded: %+v", lines)
	}
}

func TestLocalStore_Load_SeedFallback(t *testing.T) {
	ctx := context.Background()

	cases := map[string][]byte{
		"empty key":      nil,
		"garbage":        []byte("{not json"),
		"no iphone key":  []byte(`{"android":[]}`),
		"empty document": []byte(``),
	}
	for name, raw := range cases {
		kv := storage.NewMemKV()
		if raw != nil {
			if err := kv.Set(ctx, "products", raw); err != nil {
				t.Fatal(err)
			}
		}
		store := NewLocalStore(kv)
		if err := store.Load(ctx); err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		list, _ := store.List(ctx, ProductFilter{})
		if len(list) == 0 {
			t.Fatalf("%s: expected seed catalog", name)
		}
		// каталог записан обратно в хранилище
		if _, err := kv.Get(ctx, "products"); err != nil {
			t.Fatalf("%s: seed not persisted: %v", name, err)
		}
	}
}

func TestLocalStore_Load_EmptyIphoneListIsNotReseeded(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemKV()
	if err := kv.Set(ctx, "products", []byte(`{"iphone":[]}`)); err != nil {
		t.Fatal(err)
	}
	store := NewLocalStore(kv)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	list, _ := store.List(ctx, ProductFilter{})
	if len(list) != 0 {
		t.Fatalf("empty catalog replaced by seed: %d items", len(list))
	}
}

func TestLocalStore_Load_MaxAmountInheritsAmount(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemKV()
	doc := `{"iphone":[{"id":1,"name":"A","model":"13","storage":128,"color":"Black","amount":4,"price":10,"img":"a.png"}]}`
	if err := kv.Set(ctx, "products", []byte(doc)); err != nil {
		t.Fatal(err)
	}
	store := NewLocalStore(kv)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	p, err := store.ProductByID(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.MaxAmount != 4 {
		t.Fatalf("maxAmount expected 4, got %d", p.MaxAmount)
	}
}

func TestProductFilter_Facets(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(storage.NewMemKV())
	seed := []domain.Product{
		newProduct("P1", "A", 64, "Black", 1, "1"),
		newProduct("P2", "A", 128, "White", 1, "2"),
		newProduct("P3", "B", 128, "Black", 1, "3"),
	}
	for i := range seed {
		if err := store.AddProduct(ctx, &seed[i]); err != nil {
			t.Fatal(err)
		}
	}

	// пустые фасеты пропускают всё
	list, _ := store.List(ctx, ProductFilter{})
	if len(list) != 3 {
		t.Fatalf("no filter: expected 3, got %d", len(list))
	}

	// фасеты соединяются по И
	list, _ = store.List(ctx, ProductFilter{Models: []string{"A"}, Storages: []string{"128"}})
	if len(list) != 1 || list[0].Name != "P2" {
		t.Fatalf("model+storage: %+v", list)
	}

	// значения внутри фасета — по ИЛИ
	list, _ = store.List(ctx, ProductFilter{Storages: []string{"64", "128"}})
	if len(list) != 3 {
		t.Fatalf("storage OR: expected 3, got %d", len(list))
	}

	// модель и цвет без учёта регистра
	list, _ = store.List(ctx, ProductFilter{Models: []string{"a"}, Colors: []string{"BLACK"}})
	if len(list) != 1 || list[0].Name != "P1" {
		t.Fatalf("case-insensitive: %+v", list)
	}

	// объём — точная строка
	list, _ = store.List(ctx, ProductFilter{Storages: []string{"12"}})
	if len(list) != 0 {
		t.Fatalf("storage exact: %+v", list)
	}
}

func TestLocalTx_AtomicCartAndCatalogUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(storage.NewMemKV())
	cart := NewLocalCart(store)
	tx := NewLocalTx(store)

	p := newProduct("iPhone 15", "15", 128, "Black", 5, "999.99")
	if err := store.AddProduct(ctx, &p); err != nil {
		t.Fatal(err)
	}

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		pp, err := store.ProductByID(ctx, p.ID)
		if err != nil {
			return err
		}
		pp.ApplyAmountChange(-2)
		if err := store.UpdateProduct(ctx, pp); err != nil {
			return err
		}
		return cart.Add(ctx, domain.CartItem{Product: *pp, Quantity: 2})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	pp, _ := store.ProductByID(context.Background(), p.ID)
	if pp.Amount != 3 {
		t.Fatalf("amount expected 3, got %d", pp.Amount)
	}
	items, _ := cart.Items(context.Background())
	if len(items) != 1 {
		t.Fatalf("cart expected 1 line, got %d", len(items))
	}
}

func TestLocalStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(storage.NewMemKV())
	if err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}
	seeded, _ := store.List(ctx, ProductFilter{})

	p := newProduct("Custom", "X", 1, "Red", 1, "1")
	if err := store.AddProduct(ctx, &p); err != nil {
		t.Fatal(err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	after, _ := store.List(ctx, ProductFilter{})
	if len(after) != len(seeded) {
		t.Fatalf("reset expected %d products, got %d", len(seeded), len(after))
	}
	for _, pr := range after {
		if pr.Name == "Custom" {
			t.Fatalf("custom product survived reset")
		}
	}
}
