package store

import (
	"context"

	"suiteship/internal/models"
)

// settingsRowID pins system settings to a single row.
const settingsRowID = 1

// GetSettings retrieves the system settings singleton.
// Returns ErrNotFound when settings have never been saved.
func (s *Store) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	var settings models.SystemSettings
	err := s.db.GetContext(ctx, &settings,
		"SELECT * FROM system_settings WHERE id = $1", settingsRowID)
	if err != nil {
		return nil, translate(err)
	}
	return &settings, nil
}

// UpsertSettings writes the system settings singleton, creating the row on
// first save.
func (s *Store) UpsertSettings(ctx context.Context, settings *models.SystemSettings) error {
	settings.ID = settingsRowID

	query := `
		INSERT INTO system_settings (id, product_value_tax, shipping_tax,
			assisted_purchase_tax, group_purchase_tax, hourly_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			product_value_tax = EXCLUDED.product_value_tax,
			shipping_tax = EXCLUDED.shipping_tax,
			assisted_purchase_tax = EXCLUDED.assisted_purchase_tax,
			group_purchase_tax = EXCLUDED.group_purchase_tax,
			hourly_rate = EXCLUDED.hourly_rate`

	_, err := s.db.ExecContext(ctx, query,
		settings.ID, settings.ProductValueTax, settings.ShippingTax,
		settings.AssistedPurchaseTax, settings.GroupPurchaseTax, settings.HourlyRate)
	return translate(err)
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
