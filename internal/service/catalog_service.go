package service

import (
	"context"
	"errors"

	"vitrine/internal/domain"
	"vitrine/internal/repository"
)

// CatalogService инкапсулирует бизнес-логику администрирования каталога
type CatalogService struct {
	catalog repository.CatalogRepository
}

func NewCatalogService(catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// ErrInvalidInput возвращается на незаполненную или некорректную форму
// товара; в отличие от операций корзины такие ошибки показываются пользователю
var ErrInvalidInput = errors.New("invalid input")

func validateProduct(p domain.Product) error {
	if p.Name == "" || p.Model == "" || p.Color == "" {
		return ErrInvalidInput
	}
	if p.Storage < 0 || p.Amount < 0 || p.Price.IsNegative() {
		return ErrInvalidInput
	}
	return nil
}

// Create добавляет товар; id присваивает репозиторий
func (s *CatalogService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	// у нового товара должна быть картинка
	if p.Img == "" {
		return nil, ErrInvalidInput
	}
	cp := p
	cp.MaxAmount = cp.Amount
	if err := s.catalog.AddProduct(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// Update заменяет редактируемые поля товара. Пустая картинка означает
// «оставить прежнюю»; потолок MaxAmount правкой не затрагивается.
func (s *CatalogService) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID <= 0 {
		return nil, ErrInvalidInput
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	current, err := s.catalog.ProductByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	current.Name = p.Name
	current.Model = p.Model
	current.Storage = p.Storage
	current.Color = p.Color
	current.Amount = p.Amount
	current.Price = p.Price
	if p.Img != "" {
		current.Img = p.Img
	}
	if err := s.catalog.UpdateProduct(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.catalog.ProductByID(ctx, id)
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.catalog.RemoveProduct(ctx, id)
}

func (s *CatalogService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return s.catalog.List(ctx, f)
}

// Reset возвращает каталог к начальному набору товаров
func (s *CatalogService) Reset(ctx context.Context) error {
	return s.catalog.Reset(ctx)
}
