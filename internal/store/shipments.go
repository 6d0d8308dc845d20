package store

import (
	"context"
	"errors"

	"suiteship/internal/models"
)

// CreateShipment inserts a shipment and its product lines in one
// transaction. The shipment's ID and CreatedAt are filled in from the
// returned row.
func (s *Store) CreateShipment(ctx context.Context, shipment *models.Shipment, items []models.ShipmentProduct) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO shipments (client_id, carrier_id, status, tracking_code, total_cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	row := tx.QueryRowxContext(ctx, query,
		shipment.ClientID, shipment.CarrierID, shipment.Status,
		shipment.TrackingCode, shipment.TotalCost)
	if err := row.Scan(&shipment.ID, &shipment.CreatedAt); err != nil {
		return translate(err)
	}

	for i := range items {
		items[i].ShipmentID = shipment.ID
		err := tx.GetContext(ctx, &items[i].ID,
			"INSERT INTO shipment_products (shipment_id, product_id, quantity) VALUES ($1, $2, $3) RETURNING id",
			items[i].ShipmentID, items[i].ProductID, items[i].Quantity)
		if err != nil {
			return translate(err)
		}
	}

	return tx.Commit()
}

// ListShipmentsByClient retrieves shipments for a client, newest first
func (s *Store) ListShipmentsByClient(ctx context.Context, clientID int64) ([]models.Shipment, error) {
	shipments := []models.Shipment{}
	err := s.db.SelectContext(ctx, &shipments,
		"SELECT * FROM shipments WHERE client_id = $1 ORDER BY created_at DESC", clientID)
	return shipments, err
}

// ListShipmentsForUser resolves the client owned by userID and lists its
// shipments. A user with no client record gets an empty slice, not an error.
func (s *Store) ListShipmentsForUser(ctx context.Context, userID int64) ([]models.Shipment, error) {
	client, err := s.GetClientByUserID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return []models.Shipment{}, nil
	}
	if err != nil {
		return nil, err
	}

	return s.ListShipmentsByClient(ctx, client.ID)
}

// GetShipmentItems retrieves all product lines for a shipment
func (s *Store) GetShipmentItems(ctx context.Context, shipmentID int64) ([]models.ShipmentProduct, error) {
	items := []models.ShipmentProduct{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM shipment_products WHERE shipment_id = $1", shipmentID)
	return items, err
}

// SuiteProducts lists the products visible in a user's suite. A user with no
// client record gets an empty slice.
//
// TODO: filter by suite membership once inbound package receiving records
// which suite each product was logged into; today every product is visible.
func (s *Store) SuiteProducts(ctx context.Context, userID int64) ([]models.Product, error) {
	_, err := s.GetClientByUserID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, err
	}

	return s.ListProducts(ctx)
}
