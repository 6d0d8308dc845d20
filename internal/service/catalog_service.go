package service

import (
	"context"
	"fmt"

	"suiteship/internal/models"
	"suiteship/internal/store"
	"suiteship/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService handles product, carrier and settings management
type CatalogService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(st *store.Store) *CatalogService {
	return &CatalogService{
		store:  st,
		logger: util.GetLogger(),
	}
}

// CreateProductRequest represents a request to add a product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description"`
	NCM         string          `json:"ncm" binding:"required"`
	Value       decimal.Decimal `json:"value"`
}

// CreateCarrierRequest represents a request to register a carrier
type CreateCarrierRequest struct {
	Name         string               `json:"name" binding:"required"`
	Phone        string               `json:"phone" binding:"required"`
	Email        string               `json:"email" binding:"required,email"`
	APIKeys      []string             `json:"api_keys"`
	WeightPrices []models.WeightPrice `json:"weight_prices"`
}

// SaveSettingsRequest represents the system settings singleton payload
type SaveSettingsRequest struct {
	ProductValueTax     decimal.Decimal `json:"product_value_tax"`
	ShippingTax         decimal.Decimal `json:"shipping_tax"`
	AssistedPurchaseTax decimal.Decimal `json:"assisted_purchase_tax"`
	GroupPurchaseTax    decimal.Decimal `json:"group_purchase_tax"`
	HourlyRate          decimal.Decimal `json:"hourly_rate"`
}

// CreateProduct adds a product to the catalog
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if req.Value.IsNegative() {
		return nil, fmt.Errorf("product value must not be negative: %w", ErrValidation)
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		NCM:         req.NCM,
		Value:       req.Value,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))
	return product, nil
}

// ListProducts retrieves the full catalog
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

// SuiteProducts lists the products visible in a user's suite
func (s *CatalogService) SuiteProducts(ctx context.Context, userID int64) ([]models.Product, error) {
	return s.store.SuiteProducts(ctx, userID)
}

// CreateCarrier registers a carrier with its pricing bands
func (s *CatalogService) CreateCarrier(ctx context.Context, req *CreateCarrierRequest) (*models.Carrier, error) {
	for _, band := range req.WeightPrices {
		if band.MinWeight < 0 || band.MaxWeight < band.MinWeight {
			return nil, fmt.Errorf("invalid weight band [%v, %v]: %w",
				band.MinWeight, band.MaxWeight, ErrValidation)
		}
		if band.Price.IsNegative() {
			return nil, fmt.Errorf("band price must not be negative: %w", ErrValidation)
		}
	}

	carrier := &models.Carrier{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		APIKeys:      models.StringList(req.APIKeys),
		WeightPrices: models.WeightPriceList(req.WeightPrices),
	}

	if err := s.store.CreateCarrier(ctx, carrier); err != nil {
		return nil, fmt.Errorf("failed to create carrier: %w", err)
	}

	s.logger.Info("Carrier created",
		zap.Int64("carrier_id", carrier.ID),
		zap.String("name", carrier.Name))
	return carrier, nil
}

// ListCarriers retrieves all carriers
func (s *CatalogService) ListCarriers(ctx context.Context) ([]models.Carrier, error) {
	return s.store.ListCarriers(ctx)
}

// GetSettings retrieves the system settings singleton
func (s *CatalogService) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	return s.store.GetSettings(ctx)
}

// SaveSettings writes the system settings singleton
func (s *CatalogService) SaveSettings(ctx context.Context, req *SaveSettingsRequest) (*models.SystemSettings, error) {
	rates := map[string]decimal.Decimal{
		"product_value_tax":     req.ProductValueTax,
		"shipping_tax":          req.ShippingTax,
		"assisted_purchase_tax": req.AssistedPurchaseTax,
		"group_purchase_tax":    req.GroupPurchaseTax,
		"hourly_rate":           req.HourlyRate,
	}
	for name, rate := range rates {
		if rate.IsNegative() {
			return nil, fmt.Errorf("%s must not be negative: %w", name, ErrValidation)
		}
	}

	settings := &models.SystemSettings{
		ProductValueTax:     req.ProductValueTax,
		ShippingTax:         req.ShippingTax,
		AssistedPurchaseTax: req.AssistedPurchaseTax,
		GroupPurchaseTax:    req.GroupPurchaseTax,
		HourlyRate:          req.HourlyRate,
	}

	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info("System settings saved")
	return settings, nil
}
