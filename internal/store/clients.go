package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"suiteship/internal/models"
)

// CreateClient inserts a new client profile and fills in the generated ID.
// Returns ErrDuplicate when the suite ID is already assigned.
func (s *Store) CreateClient(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (user_id, first_name, middle_name, last_name, document,
			email, phone, suite_id, addresses, wallet_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := s.db.GetContext(ctx, &client.ID, query,
		client.UserID, client.FirstName, client.MiddleName, client.LastName,
		client.Document, client.Email, client.Phone, client.SuiteID,
		client.Addresses, client.WalletBalance)
	return translate(err)
}

// UpdateClient applies a partial set of column updates and returns the
// updated row. Returns ErrNotFound when the ID does not exist.
func (s *Store) UpdateClient(ctx context.Context, id int64, fields map[string]interface{}) (*models.Client, error) {
	if len(fields) == 0 {
		return s.GetClientByID(ctx, id)
	}

	// Deterministic column order keeps the generated SQL stable.
	columns := make([]string, 0, len(fields))
	for col := range fields {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	setClauses := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	for i, col := range columns {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, fields[col])
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE clients SET %s WHERE id = $%d RETURNING *",
		strings.Join(setClauses, ", "), len(args))

	var client models.Client
	if err := s.db.GetContext(ctx, &client, query, args...); err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

// GetClientByID retrieves a client by ID
func (s *Store) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	err := s.db.GetContext(ctx, &client, "SELECT * FROM clients WHERE id = $1", id)
	if err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

// GetClientByUserID retrieves the client profile owned by a user
func (s *Store) GetClientByUserID(ctx context.Context, userID int64) (*models.Client, error) {
	var client models.Client
	err := s.db.GetContext(ctx, &client, "SELECT * FROM clients WHERE user_id = $1", userID)
	if err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

// ListClients retrieves all clients
func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	err := s.db.SelectContext(ctx, &clients, "SELECT * FROM clients ORDER BY id")
	return clients, err
}
