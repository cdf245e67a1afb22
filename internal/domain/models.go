package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product представляет товар каталога. Amount — текущий продаваемый
// остаток; MaxAmount — снимок остатка на момент последнего попадания
// товара в корзину, используется строкой корзины как потолок количества.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Model     string          `json:"model"`
	Storage   int64           `json:"storage"`
	Color     string          `json:"color"`
	Amount    int64           `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	Img       string          `json:"img"`
	MaxAmount int64           `json:"maxAmount"`
}

// ApplyAmountChange изменяет остаток, не давая ему уйти ниже нуля.
// Верхней границы нет: MaxAmount — потолок строки корзины, а не товара.
func (p *Product) ApplyAmountChange(change int64) {
	p.Amount += change
	if p.Amount < 0 {
		p.Amount = 0
	}
}

// CartItem строка корзины: копия товара на момент первого добавления
// плюс количество. MaxAmount фиксируется доступным остатком в момент
// добавления и дальше не пересматривается.
type CartItem struct {
	Product
	Quantity int64 `json:"quantity"`
}

// OrderLine неизменяемая запись журнала заказов, создаётся при
// оформлении. Поля товара денормализованы: последующие правки
// каталога на журнал не влияют.
type OrderLine struct {
	ID         int64           `json:"id"`
	Img        string          `json:"img"`
	Name       string          `json:"name"`
	Model      string          `json:"model"`
	Storage    int64           `json:"storage"`
	Color      string          `json:"color"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Date       time.Time       `json:"date"`
	CheckoutID uuid.UUID       `json:"checkout_id"`
}
