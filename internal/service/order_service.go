package service

import (
	"context"

	"vitrine/internal/domain"
	"vitrine/internal/repository"
)

// OrderService отдаёт журнал заказов и свод по товарам
type OrderService struct {
	orders repository.OrderRepository
}

func NewOrderService(orders repository.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// Orders возвращает журнал в порядке записи
func (s *OrderService) Orders(ctx context.Context) ([]domain.OrderLine, error) {
	return s.orders.Orders(ctx)
}

// Summary сворачивает журнал в одну строку на товар: первая встреченная
// запись задаёт поля строки, последующие добавляют только количество.
// Порядок строк — порядок первого появления товара в журнале.
func (s *OrderService) Summary(ctx context.Context) ([]domain.OrderLine, error) {
	lines, err := s.orders.Orders(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.OrderLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		qty := line.Quantity
		if qty == 0 {
			// записи старого формата без количества считаем одной единицей
			qty = 1
		}
		if i, ok := index[line.ID]; ok {
			rows[i].Quantity += qty
			continue
		}
		line.Quantity = qty
		index[line.ID] = len(rows)
		rows = append(rows, line)
	}
	return rows, nil
}
