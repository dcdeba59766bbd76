package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// PlaceholderImageURL is stored when a product is created without images.
const PlaceholderImageURL = "/images/placeholder-product.svg"

const featuredLimit = 4

var ErrValidation = errors.New("validation failed")

// CreateProductCommand is the typed form of the admin multipart payload,
// built and validated by the HTTP layer before any domain call.
type CreateProductCommand struct {
	Name          string
	NameAr        string
	Description   string
	DescriptionAr string
	Price         float64
	CategoryID    uuid.UUID
	StockQuantity int
	ImageURLs     []string
}

// UpdateProductCommand mirrors CreateProductCommand. An empty ImageURLs
// keeps the images already stored on the product.
type UpdateProductCommand struct {
	Name          string
	NameAr        string
	Description   string
	DescriptionAr string
	Price         float64
	CategoryID    uuid.UUID
	StockQuantity int
	ImageURLs     []string
}

type Service interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	FeaturedProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)

	ListAllProducts(ctx context.Context) ([]Product, error)
	CreateProduct(ctx context.Context, cmd CreateProductCommand) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, cmd UpdateProductCommand) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetProductActive(ctx context.Context, id uuid.UUID, active bool) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

func (s *service) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]Product, error) {
	products, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		log.Error().Err(err).Stringer("category_id", categoryID).Msg("service: failed to list products by category")
		return nil, fmt.Errorf("service: failed to list products by category: %w", err)
	}
	return products, nil
}

func (s *service) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	products, err := s.repo.Search(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("service: failed to search products")
		return nil, fmt.Errorf("service: failed to search products: %w", err)
	}
	return products, nil
}

func (s *service) FeaturedProducts(ctx context.Context) ([]Product, error) {
	products, err := s.repo.ListFeatured(ctx, featuredLimit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list featured products")
		return nil, fmt.Errorf("service: failed to list featured products: %w", err)
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			log.Warn().Stringer("product_id", id).Msg("service: product not found")
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to get product")
		return nil, fmt.Errorf("service: failed to get product: %w", err)
	}
	return product, nil
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list categories")
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		log.Error().Err(err).Stringer("category_id", id).Msg("service: failed to get category")
		return nil, fmt.Errorf("service: failed to get category: %w", err)
	}
	return category, nil
}

func (s *service) ListAllProducts(ctx context.Context) ([]Product, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list all products")
		return nil, fmt.Errorf("service: failed to list all products: %w", err)
	}
	return products, nil
}

func (s *service) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*Product, error) {
	if err := validateProductFields(cmd.Name, cmd.NameAr, cmd.Price, cmd.CategoryID); err != nil {
		return nil, err
	}

	imageURLs := cmd.ImageURLs
	if len(imageURLs) == 0 {
		imageURLs = []string{PlaceholderImageURL}
	}

	product := &Product{
		Name:          cmd.Name,
		NameAr:        cmd.NameAr,
		Description:   cmd.Description,
		DescriptionAr: cmd.DescriptionAr,
		Price:         cmd.Price,
		CategoryID:    cmd.CategoryID,
		ImageURLs:     imageURLs,
		StockQuantity: cmd.StockQuantity,
		IsActive:      true,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		log.Error().Err(err).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", product.ID).Str("name", product.Name).Msg("service: product created")

	return s.repo.GetByID(ctx, product.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, cmd UpdateProductCommand) (*Product, error) {
	if err := validateProductFields(cmd.Name, cmd.NameAr, cmd.Price, cmd.CategoryID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to load product for update")
		return nil, fmt.Errorf("service: failed to load product for update: %w", err)
	}

	imageURLs := cmd.ImageURLs
	if len(imageURLs) == 0 {
		imageURLs = existing.ImageURLs
		if len(imageURLs) == 0 {
			imageURLs = []string{PlaceholderImageURL}
		}
	}

	product := &Product{
		ID:            id,
		Name:          cmd.Name,
		NameAr:        cmd.NameAr,
		Description:   cmd.Description,
		DescriptionAr: cmd.DescriptionAr,
		Price:         cmd.Price,
		CategoryID:    cmd.CategoryID,
		ImageURLs:     imageURLs,
		StockQuantity: cmd.StockQuantity,
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	return s.repo.GetByID(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}
	log.Info().Stringer("product_id", id).Msg("service: product deleted")
	return nil
}

func (s *service) SetProductActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to toggle product status")
		return fmt.Errorf("service: failed to toggle product status: %w", err)
	}
	return nil
}

func validateProductFields(name, nameAr string, price float64, categoryID uuid.UUID) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if nameAr == "" {
		return fmt.Errorf("%w: name_ar is required", ErrValidation)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if categoryID == uuid.Nil {
		return fmt.Errorf("%w: category_id is required", ErrValidation)
	}
	return nil
}
