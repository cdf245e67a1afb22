package service

import (
	"sort"

	"vitrine/internal/domain"
)

// Направления сортировки по цене
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// SortByPrice возвращает новый срез, отсортированный по цене; исходный
// не меняется. Сортировка стабильная: равные цены сохраняют взаимный
// порядок. Неизвестное направление оставляет порядок исходным.
func SortByPrice(products []domain.Product, direction string) []domain.Product {
	sorted := make([]domain.Product, len(products))
	copy(sorted, products)
	switch direction {
	case SortAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price.LessThan(sorted[j].Price)
		})
	case SortDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[j].Price.LessThan(sorted[i].Price)
		})
	}
	return sorted
}
