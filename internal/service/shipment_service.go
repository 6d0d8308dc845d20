package service

import (
	"context"
	"fmt"
	"time"

	"suiteship/internal/broker"
	"suiteship/internal/models"
	"suiteship/internal/store"
	"suiteship/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ShipmentService handles shipment business logic
type ShipmentService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewShipmentService creates a new shipment service
func NewShipmentService(st *store.Store, eventPublisher *broker.EventPublisher) *ShipmentService {
	return &ShipmentService{
		store:          st,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateShipmentRequest represents a request to create a shipment
type CreateShipmentRequest struct {
	CarrierID    int64                 `json:"carrier_id" binding:"required"`
	ClientID     int64                 `json:"client_id"`
	TrackingCode *string               `json:"tracking_code"`
	TotalCost    decimal.Decimal       `json:"total_cost"`
	WeightKg     float64               `json:"weight_kg"`
	Products     []ShipmentItemRequest `json:"products" binding:"required,min=1,dive"`
}

// ShipmentItemRequest represents one product line in a shipment
type ShipmentItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// CreateShipmentResponse represents the created shipment with its lines
type CreateShipmentResponse struct {
	Shipment *models.Shipment         `json:"shipment"`
	Items    []models.ShipmentProduct `json:"items"`
}

// CreateShipment creates a shipment for the acting user. Non-admin callers
// always ship from their own client suite; admins may pass an explicit
// client_id. Status is always OPEN and created_at is server-assigned,
// whatever the request says.
func (s *ShipmentService) CreateShipment(ctx context.Context, actor *models.User, req *CreateShipmentRequest) (*CreateShipmentResponse, error) {
	ctx, span := util.StartSpan(ctx, "ShipmentService.CreateShipment")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ShipmentCreateLatency.Observe(time.Since(start).Seconds())
	}()

	client, err := s.resolveClient(ctx, actor, req.ClientID)
	if err != nil {
		util.ShipmentsFailedTotal.WithLabelValues("no_client").Inc()
		return nil, err
	}

	carrier, err := s.store.GetCarrierByID(ctx, req.CarrierID)
	if err != nil {
		util.ShipmentsFailedTotal.WithLabelValues("unknown_carrier").Inc()
		return nil, fmt.Errorf("failed to resolve carrier: %w", err)
	}

	if err := s.validateItems(ctx, req.Products); err != nil {
		util.ShipmentsFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	totalCost, err := s.resolveTotalCost(req, carrier)
	if err != nil {
		util.ShipmentsFailedTotal.WithLabelValues("no_price_band").Inc()
		return nil, err
	}

	shipment := &models.Shipment{
		ClientID:     client.ID,
		CarrierID:    carrier.ID,
		Status:       models.ShipmentStatusOpen,
		TrackingCode: req.TrackingCode,
		TotalCost:    totalCost,
	}

	items := make([]models.ShipmentProduct, 0, len(req.Products))
	for _, item := range req.Products {
		items = append(items, models.ShipmentProduct{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := s.store.CreateShipment(ctx, shipment, items); err != nil {
		util.ShipmentsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create shipment: %w", err)
	}

	util.ShipmentsCreatedTotal.Inc()
	s.logger.Info("Shipment created",
		zap.Int64("shipment_id", shipment.ID),
		zap.Int64("client_id", shipment.ClientID),
		zap.String("total_cost", shipment.TotalCost.String()))

	eventItems := make([]models.ShipmentItemData, 0, len(items))
	for _, item := range items {
		eventItems = append(eventItems, models.ShipmentItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	event := &models.ShipmentCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeShipmentCreated,
			Timestamp: time.Now(),
		},
		ShipmentID: shipment.ID,
		ClientID:   shipment.ClientID,
		CarrierID:  shipment.CarrierID,
		TotalCost:  shipment.TotalCost,
		Items:      eventItems,
	}
	if err := s.eventPublisher.PublishShipmentCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ShipmentCreated event", zap.Error(err))
	}

	return &CreateShipmentResponse{Shipment: shipment, Items: items}, nil
}

// ListShipmentsForUser lists the shipments of the caller's client suite.
// Users without a client record get an empty slice.
func (s *ShipmentService) ListShipmentsForUser(ctx context.Context, userID int64) ([]models.Shipment, error) {
	return s.store.ListShipmentsForUser(ctx, userID)
}

func (s *ShipmentService) resolveClient(ctx context.Context, actor *models.User, requestedClientID int64) (*models.Client, error) {
	if actor.Role == models.RoleAdmin && requestedClientID != 0 {
		client, err := s.store.GetClientByID(ctx, requestedClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve client: %w", err)
		}
		return client, nil
	}

	client, err := s.store.GetClientByUserID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller's client profile: %w", err)
	}
	return client, nil
}

func (s *ShipmentService) validateItems(ctx context.Context, items []ShipmentItemRequest) error {
	seen := make(map[int64]struct{}, len(items))
	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return err
	}
	if len(products) != len(productIDs) {
		return fmt.Errorf("some products not found: %w", store.ErrNotFound)
	}
	return nil
}

// resolveTotalCost prefers an explicit total from the request; with no total
// but a declared weight, the carrier's band pricing quotes the cost.
func (s *ShipmentService) resolveTotalCost(req *CreateShipmentRequest, carrier *models.Carrier) (decimal.Decimal, error) {
	if req.TotalCost.IsNegative() {
		return decimal.Zero, fmt.Errorf("total cost must not be negative: %w", ErrValidation)
	}
	if !req.TotalCost.IsZero() || req.WeightKg <= 0 {
		return req.TotalCost, nil
	}

	price, ok := carrier.WeightPrices.PriceFor(req.WeightKg)
	if !ok {
		return decimal.Zero, fmt.Errorf("carrier %s has no price band for %.2f kg: %w",
			carrier.Name, req.WeightKg, ErrValidation)
	}
	return price, nil
}
