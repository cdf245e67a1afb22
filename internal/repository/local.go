package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"vitrine/internal/domain"
	"vitrine/internal/storage"
)

// Ключи персистентного хранилища
const (
	keyProducts = "products"
	keyCart     = "cartItems"
	keyOrders   = "orders"
)

// Каталог исторически сериализуется обёрнутым в ключ iphone
type catalogDocument struct {
	IPhone []domain.Product `json:"iphone"`
}

// Начальный каталог; подставляется, когда в хранилище нет товаров
//
//go:embed seed/products.json
var seedCatalog []byte

// LocalStore держит каталог, корзину и журнал заказов в памяти и
// пишет каждое изменение в key-value хранилище целиком (write-through,
// без батчинга). Ошибка сериализации отдаётся вызывающему как есть.
type LocalStore struct {
	mu       sync.RWMutex
	kv       storage.KV
	products []domain.Product
	cart     []domain.CartItem
	orders   []domain.OrderLine
}

func NewLocalStore(kv storage.KV) *LocalStore {
	return &LocalStore{kv: kv}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (s *LocalStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		s.mu.RLock()
	}
}
func (s *LocalStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		s.mu.RUnlock()
	}
}
func (s *LocalStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		s.mu.Lock()
	}
}
func (s *LocalStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		s.mu.Unlock()
	}
}

// Ensure interfaces
var _ CatalogRepository = (*LocalStore)(nil)

// CartRepository и OrderRepository реализованы обёртками LocalCart и LocalOrders

// Load поднимает состояние из хранилища. Отсутствующий, пустой или
// повреждённый ключ products заменяется встроенным начальным каталогом;
// если и он не читается, каталог остаётся пустым — это не ошибка.
func (s *LocalStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = context.WithValue(ctx, txKey{}, true)

	doc, ok := s.readCatalog(ctx)
	if !ok {
		doc = s.bootstrapCatalog(ctx)
	}
	s.products = doc.IPhone
	for i := range s.products {
		// записи старого формата без потолка наследуют остаток
		if s.products[i].MaxAmount == 0 {
			s.products[i].MaxAmount = s.products[i].Amount
		}
	}

	if err := loadKey(ctx, s.kv, keyCart, &s.cart); err != nil {
		return err
	}
	return loadKey(ctx, s.kv, keyOrders, &s.orders)
}

func loadKey[T any](ctx context.Context, kv storage.KV, key string, out *[]T) error {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNoKey) {
		*out = nil
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// readCatalog читает ключ products; второй результат false означает,
// что ключ отсутствует, пуст или в нём нет обёртки iphone
func (s *LocalStore) readCatalog(ctx context.Context) (catalogDocument, bool) {
	raw, err := s.kv.Get(ctx, keyProducts)
	if err != nil || len(raw) == 0 {
		return catalogDocument{}, false
	}
	var probe struct {
		IPhone *[]domain.Product `json:"iphone"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.IPhone == nil {
		return catalogDocument{}, false
	}
	return catalogDocument{IPhone: *probe.IPhone}, true
}

// bootstrapCatalog разворачивает встроенный начальный каталог и сразу
// записывает его в хранилище. Любой сбой деградирует до пустого
// каталога: хуже no-op здесь ничего не случается.
func (s *LocalStore) bootstrapCatalog(ctx context.Context) catalogDocument {
	var doc catalogDocument
	if err := json.Unmarshal(seedCatalog, &doc); err != nil {
		log.Printf("seed catalog unreadable: %v", err)
		return catalogDocument{}
	}
	if err := s.kv.Set(ctx, keyProducts, seedCatalog); err != nil {
		log.Printf("seed catalog not persisted: %v", err)
		return catalogDocument{}
	}
	return doc
}

// persist-хелперы вызываются строго под блокировкой записи

func (s *LocalStore) persistCatalog(ctx context.Context) error {
	raw, err := json.Marshal(catalogDocument{IPhone: s.products})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, keyProducts, raw)
}

func (s *LocalStore) persistCart(ctx context.Context) error {
	items := s.cart
	if items == nil {
		items = []domain.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, keyCart, raw)
}

func (s *LocalStore) persistOrders(ctx context.Context) error {
	lines := s.orders
	if lines == nil {
		lines = []domain.OrderLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, keyOrders, raw)
}

// CatalogRepository implementation

func (s *LocalStore) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	for _, p := range s.products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *LocalStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// AddProduct присваивает id как id последнего товара плюс один и
// дописывает товар в конец каталога
func (s *LocalStore) AddProduct(ctx context.Context, p *domain.Product) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	p.ID = 1
	if n := len(s.products); n > 0 {
		p.ID = s.products[n-1].ID + 1
	}
	s.products = append(s.products, *p)
	return s.persistCatalog(ctx)
}

func (s *LocalStore) UpdateProduct(ctx context.Context, p *domain.Product) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = *p
			return s.persistCatalog(ctx)
		}
	}
	return ErrNotFound
}

func (s *LocalStore) RemoveProduct(ctx context.Context, id int64) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return s.persistCatalog(ctx)
		}
	}
	return ErrNotFound
}

// Reset заменяет каталог встроенным начальным набором товаров
func (s *LocalStore) Reset(ctx context.Context) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	var doc catalogDocument
	if err := json.Unmarshal(seedCatalog, &doc); err != nil {
		log.Printf("seed catalog unreadable: %v", err)
		doc = catalogDocument{}
	}
	s.products = doc.IPhone
	return s.persistCatalog(ctx)
}

// CartRepository implementation on wrapper type
type LocalCart struct{ store *LocalStore }

func NewLocalCart(store *LocalStore) *LocalCart { return &LocalCart{store: store} }

var _ CartRepository = (*LocalCart)(nil)

func (c *LocalCart) Items(ctx context.Context) ([]domain.CartItem, error) {
	c.store.rlock(ctx)
	defer c.store.runlock(ctx)
	out := make([]domain.CartItem, len(c.store.cart))
	copy(out, c.store.cart)
	return out, nil
}

func (c *LocalCart) ItemByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	c.store.rlock(ctx)
	defer c.store.runlock(ctx)
	for _, it := range c.store.cart {
		if it.ID == id {
			cp := it
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (c *LocalCart) Add(ctx context.Context, item domain.CartItem) error {
	c.store.wlock(ctx)
	defer c.store.wunlock(ctx)
	c.store.cart = append(c.store.cart, item)
	return c.store.persistCart(ctx)
}

func (c *LocalCart) Update(ctx context.Context, item domain.CartItem) error {
	c.store.wlock(ctx)
	defer c.store.wunlock(ctx)
	for i := range c.store.cart {
		if c.store.cart[i].ID == item.ID {
			c.store.cart[i] = item
			return c.store.persistCart(ctx)
		}
	}
	return ErrNotFound
}

func (c *LocalCart) Remove(ctx context.Context, id int64) error {
	c.store.wlock(ctx)
	defer c.store.wunlock(ctx)
	for i := range c.store.cart {
		if c.store.cart[i].ID == id {
			c.store.cart = append(c.store.cart[:i], c.store.cart[i+1:]...)
			return c.store.persistCart(ctx)
		}
	}
	return ErrNotFound
}

func (c *LocalCart) Clear(ctx context.Context) error {
	c.store.wlock(ctx)
	defer c.store.wunlock(ctx)
	c.store.cart = nil
	return c.store.persistCart(ctx)
}

// OrderRepository implementation on wrapper type
type LocalOrders struct{ store *LocalStore }

func NewLocalOrders(store *LocalStore) *LocalOrders { return &LocalOrders{store: store} }

var _ OrderRepository = (*LocalOrders)(nil)

func (o *LocalOrders) Orders(ctx context.Context) ([]domain.OrderLine, error) {
	o.store.rlock(ctx)
	defer o.store.runlock(ctx)
	out := make([]domain.OrderLine, len(o.store.orders))
	copy(out, o.store.orders)
	return out, nil
}

func (o *LocalOrders) Append(ctx context.Context, lines []domain.OrderLine) error {
	o.store.wlock(ctx)
	defer o.store.wunlock(ctx)
	o.store.orders = append(o.store.orders, lines...)
	return o.store.persistOrders(ctx)
}

// Tx manager using write lock to emulate transaction boundary
type LocalTx struct{ store *LocalStore }

func NewLocalTx(store *LocalStore) *LocalTx { return &LocalTx{store: store} }

var _ TxManager = (*LocalTx)(nil)

func (tx *LocalTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Берём блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
