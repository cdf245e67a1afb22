package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"vitrine/internal/domain"
	"vitrine/internal/repository"
)

// CartService реализует согласование корзины и остатков каталога:
// добавление резервирует остаток, удаление возвращает его, оформление
// переносит строки в журнал заказов. Недопустимые запросы (неизвестный
// товар, количество вне допустимого) молча игнорируются — это выбранная
// политика отказов; наружу уходят только ошибки хранилища.
type CartService struct {
	catalog repository.CatalogRepository
	cart    repository.CartRepository
	orders  repository.OrderRepository
	tx      repository.TxManager
}

func NewCartService(catalog repository.CatalogRepository, cart repository.CartRepository, orders repository.OrderRepository, tx repository.TxManager) *CartService {
	return &CartService{catalog: catalog, cart: cart, orders: orders, tx: tx}
}

// Add кладёт qty единиц товара в корзину и списывает их с остатка.
// Новая строка снимает копию товара и фиксирует потолок MaxAmount текущим
// остатком; повторное добавление увеличивает только количество — потолок
// намеренно не пересматривается (асимметрия с UpdateQuantity).
func (s *CartService) Add(ctx context.Context, productID, qty int64) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.catalog.ProductByID(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if qty < 1 || qty > p.Amount {
			return nil
		}

		item, err := s.cart.ItemByID(ctx, productID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			line := domain.CartItem{Product: *p, Quantity: qty}
			line.MaxAmount = p.Amount
			if err := s.cart.Add(ctx, line); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			item.Quantity += qty
			if err := s.cart.Update(ctx, *item); err != nil {
				return err
			}
		}

		p.ApplyAmountChange(-qty)
		return s.catalog.UpdateProduct(ctx, p)
	})
}

// UpdateQuantity выставляет количество строки и двигает остаток каталога
// на разницу. Допустимый диапазон — от единицы до потолка строки;
// запрос вне диапазона — no-op, вход обрезает вызывающая сторона.
func (s *CartService) UpdateQuantity(ctx context.Context, productID, newQty int64) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		item, err := s.cart.ItemByID(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		p, err := s.catalog.ProductByID(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if newQty < 1 || newQty > item.MaxAmount {
			return nil
		}

		old := item.Quantity
		if old == 0 {
			old = 1
		}
		p.ApplyAmountChange(-(newQty - old))
		if err := s.catalog.UpdateProduct(ctx, p); err != nil {
			return err
		}
		item.Quantity = newQty
		return s.cart.Update(ctx, *item)
	})
}

// Remove убирает строку и возвращает всё её количество на остаток
func (s *CartService) Remove(ctx context.Context, productID int64) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		item, err := s.cart.ItemByID(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		p, err := s.catalog.ProductByID(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		p.ApplyAmountChange(qty)
		if err := s.cart.Remove(ctx, productID); err != nil {
			return err
		}
		return s.catalog.UpdateProduct(ctx, p)
	})
}

// Clear опустошает корзину. Остаток каталога не восстанавливается —
// в отличие от Remove; см. тест на это расхождение.
func (s *CartService) Clear(ctx context.Context) error {
	return s.cart.Clear(ctx)
}

// Checkout переносит строки корзины в журнал заказов и очищает корзину.
// Остатки каталога не трогаются: они были списаны при добавлении.
// Все строки одного оформления получают общий checkout_id и метку
// времени. Возвращается полный журнал.
func (s *CartService) Checkout(ctx context.Context) ([]domain.OrderLine, error) {
	var out []domain.OrderLine
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		items, err := s.cart.Items(ctx)
		if err != nil {
			return err
		}

		checkoutID := uuid.New()
		now := time.Now().UTC()
		lines := make([]domain.OrderLine, 0, len(items))
		for _, it := range items {
			qty := it.Quantity
			if qty == 0 {
				qty = 1
			}
			lines = append(lines, domain.OrderLine{
				ID:         it.ID,
				Img:        it.Img,
				Name:       it.Name,
				Model:      it.Model,
				Storage:    it.Storage,
				Color:      it.Color,
				Quantity:   qty,
				Price:      it.Price,
				Date:       now,
				CheckoutID: checkoutID,
			})
		}
		if err := s.orders.Append(ctx, lines); err != nil {
			return err
		}
		if err := s.cart.Clear(ctx); err != nil {
			return err
		}
		out, err = s.orders.Orders(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Items текущие строки корзины
func (s *CartService) Items(ctx context.Context) ([]domain.CartItem, error) {
	return s.cart.Items(ctx)
}

// TotalQuantity суммарное число единиц в корзине (счётчик у иконки корзины)
func (s *CartService) TotalQuantity(ctx context.Context) (int64, error) {
	items, err := s.cart.Items(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, it := range items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		total += qty
	}
	return total, nil
}
