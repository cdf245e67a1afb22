package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"vitrine/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ProductFilter независимые фасеты фильтрации каталога. Пустой фасет
// пропускает любое значение; внутри фасета значения объединяются по ИЛИ,
// фасеты между собой — по И.
type ProductFilter struct {
	Models   []string
	Storages []string
	Colors   []string
}

// Matches сообщает, проходит ли товар все фасеты. Модель и цвет
// сравниваются без учёта регистра, объём — как точная строка.
func (f ProductFilter) Matches(p domain.Product) bool {
	return matchesFold(f.Models, p.Model) &&
		matchesExact(f.Storages, strconv.FormatInt(p.Storage, 10)) &&
		matchesFold(f.Colors, p.Color)
}

func matchesFold(selected []string, value string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}

func matchesExact(selected []string, value string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if s == value {
			return true
		}
	}
	return false
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	ProductByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
	AddProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	RemoveProduct(ctx context.Context, id int64) error
	Reset(ctx context.Context) error
}

// CartRepository интерфейс репозитория строк корзины
type CartRepository interface {
	Items(ctx context.Context) ([]domain.CartItem, error)
	ItemByID(ctx context.Context, id int64) (*domain.CartItem, error)
	Add(ctx context.Context, item domain.CartItem) error
	Update(ctx context.Context, item domain.CartItem) error
	Remove(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}

// OrderRepository интерфейс журнала заказов. Журнал только дописывается.
type OrderRepository interface {
	Orders(ctx context.Context) ([]domain.OrderLine, error)
	Append(ctx context.Context, lines []domain.OrderLine) error
}

// TxManager абстракция транзакции. Для локального хранилища — глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
