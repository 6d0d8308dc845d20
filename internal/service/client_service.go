package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"suiteship/internal/broker"
	"suiteship/internal/models"
	"suiteship/internal/store"
	"suiteship/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrValidation means the request body failed a business rule check.
	ErrValidation = errors.New("validation failed")
	// ErrRestrictedField means a non-admin tried to change an admin-only
	// field (wallet balance, suite ID).
	ErrRestrictedField = errors.New("field not allowed for this role")
)

// ClientService handles client-profile business logic
type ClientService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(st *store.Store, eventPublisher *broker.EventPublisher) *ClientService {
	return &ClientService{
		store:          st,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateClientRequest represents a request to open a client suite
type CreateClientRequest struct {
	UserID        int64            `json:"user_id" binding:"required"`
	FirstName     string           `json:"first_name" binding:"required"`
	MiddleName    *string          `json:"middle_name"`
	LastName      string           `json:"last_name" binding:"required"`
	Document      string           `json:"document" binding:"required"`
	Email         string           `json:"email" binding:"required,email"`
	Phone         string           `json:"phone" binding:"required"`
	SuiteID       string           `json:"suite_id"`
	Addresses     []models.Address `json:"addresses"`
	WalletBalance *decimal.Decimal `json:"wallet_balance"`
}

// UpdateClientRequest represents a partial client update. Nil fields are
// left untouched.
type UpdateClientRequest struct {
	FirstName     *string           `json:"first_name"`
	MiddleName    *string           `json:"middle_name"`
	LastName      *string           `json:"last_name"`
	Document      *string           `json:"document"`
	Email         *string           `json:"email"`
	Phone         *string           `json:"phone"`
	Addresses     *[]models.Address `json:"addresses"`
	SuiteID       *string           `json:"suite_id"`
	WalletBalance *decimal.Decimal  `json:"wallet_balance"`
}

// CreateClient opens a client suite. A suite ID is generated when the
// request does not carry one.
func (s *ClientService) CreateClient(ctx context.Context, req *CreateClientRequest) (*models.Client, error) {
	ctx, span := util.StartSpan(ctx, "ClientService.CreateClient")
	defer span.End()

	if _, err := s.store.GetUserByID(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("failed to resolve owner: %w", err)
	}

	suiteID := req.SuiteID
	if suiteID == "" {
		suiteID = NewSuiteID()
	}

	balance := decimal.Zero
	if req.WalletBalance != nil {
		if req.WalletBalance.IsNegative() {
			return nil, fmt.Errorf("wallet balance must not be negative: %w", ErrValidation)
		}
		balance = *req.WalletBalance
	}

	client := &models.Client{
		UserID:        req.UserID,
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		Document:      req.Document,
		Email:         req.Email,
		Phone:         req.Phone,
		SuiteID:       suiteID,
		Addresses:     models.AddressList(req.Addresses),
		WalletBalance: balance,
	}

	if err := s.store.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	util.ClientsCreatedTotal.Inc()
	s.logger.Info("Client created",
		zap.Int64("client_id", client.ID),
		zap.String("suite_id", client.SuiteID))

	event := &models.ClientCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeClientCreated,
			Timestamp: time.Now(),
		},
		ClientID: client.ID,
		UserID:   client.UserID,
		SuiteID:  client.SuiteID,
	}
	if err := s.eventPublisher.PublishClientCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ClientCreated event", zap.Error(err))
	}

	return client, nil
}

// UpdateClient applies a partial update. Suite ID and wallet balance are
// admin-only fields; non-admin requests carrying them fail with
// ErrRestrictedField.
func (s *ClientService) UpdateClient(ctx context.Context, id int64, req *UpdateClientRequest, asAdmin bool) (*models.Client, error) {
	if !asAdmin && (req.SuiteID != nil || req.WalletBalance != nil) {
		return nil, ErrRestrictedField
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.MiddleName != nil {
		fields["middle_name"] = *req.MiddleName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Document != nil {
		fields["document"] = *req.Document
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Addresses != nil {
		fields["addresses"] = models.AddressList(*req.Addresses)
	}
	if req.SuiteID != nil {
		fields["suite_id"] = *req.SuiteID
	}
	if req.WalletBalance != nil {
		if req.WalletBalance.IsNegative() {
			return nil, fmt.Errorf("wallet balance must not be negative: %w", ErrValidation)
		}
		fields["wallet_balance"] = *req.WalletBalance
	}

	client, err := s.store.UpdateClient(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.logger.Info("Client updated", zap.Int64("client_id", client.ID))
	return client, nil
}

// GetClientByID retrieves a client by ID
func (s *ClientService) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	return s.store.GetClientByID(ctx, id)
}

// GetClientByUserID retrieves the client profile owned by a user
func (s *ClientService) GetClientByUserID(ctx context.Context, userID int64) (*models.Client, error) {
	return s.store.GetClientByUserID(ctx, userID)
}

// ListClients retrieves all clients
func (s *ClientService) ListClients(ctx context.Context) ([]models.Client, error) {
	return s.store.ListClients(ctx)
}

// NewSuiteID generates a fresh suite address of the form STE-8A41C9F0.
// Uniqueness is ultimately enforced by the clients.suite_id constraint.
func NewSuiteID() string {
	id := uuid.New().String()
	return "STE-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}
