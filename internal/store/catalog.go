package store

import (
	"context"

	"suiteship/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateProduct inserts a new product and fills in the generated ID.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, ncm, value)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := s.db.GetContext(ctx, &product.ID, query,
		product.Name, product.Description, product.NCM, product.Value)
	return translate(err)
}

// ListProducts retrieves all products
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	products := []models.Product{}
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// CreateCarrier inserts a new carrier and fills in the generated ID.
func (s *Store) CreateCarrier(ctx context.Context, carrier *models.Carrier) error {
	query := `
		INSERT INTO carriers (name, phone, email, api_keys, weight_prices)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := s.db.GetContext(ctx, &carrier.ID, query,
		carrier.Name, carrier.Phone, carrier.Email, carrier.APIKeys, carrier.WeightPrices)
	return translate(err)
}

// GetCarrierByID retrieves a carrier by ID
func (s *Store) GetCarrierByID(ctx context.Context, id int64) (*models.Carrier, error) {
	var carrier models.Carrier
	err := s.db.GetContext(ctx, &carrier, "SELECT * FROM carriers WHERE id = $1", id)
	if err != nil {
		return nil, translate(err)
	}
	return &carrier, nil
}

// ListCarriers retrieves all carriers
func (s *Store) ListCarriers(ctx context.Context) ([]models.Carrier, error) {
	carriers := []models.Carrier{}
	err := s.db.SelectContext(ctx, &carriers, "SELECT * FROM carriers ORDER BY id")
	return carriers, err
}
