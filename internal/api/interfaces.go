package api

import (
	"context"
	"time"

	"suiteship/internal/models"
	"suiteship/internal/service"
)

// Consumer-side interfaces so the HTTP layer can be tested in isolation;
// the concrete implementations live in internal/auth and internal/service.

// AuthService is the authentication collaborator seen by the HTTP layer.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, string, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	SessionTTL() time.Duration
}

// ClientService manages client profiles.
type ClientService interface {
	CreateClient(ctx context.Context, req *service.CreateClientRequest) (*models.Client, error)
	UpdateClient(ctx context.Context, id int64, req *service.UpdateClientRequest, asAdmin bool) (*models.Client, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	GetClientByUserID(ctx context.Context, userID int64) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
}

// CatalogService manages products, carriers and system settings.
type CatalogService interface {
	CreateProduct(ctx context.Context, req *service.CreateProductRequest) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	SuiteProducts(ctx context.Context, userID int64) ([]models.Product, error)
	CreateCarrier(ctx context.Context, req *service.CreateCarrierRequest) (*models.Carrier, error)
	ListCarriers(ctx context.Context) ([]models.Carrier, error)
	GetSettings(ctx context.Context) (*models.SystemSettings, error)
	SaveSettings(ctx context.Context, req *service.SaveSettingsRequest) (*models.SystemSettings, error)
}

// ShipmentService manages shipments.
type ShipmentService interface {
	CreateShipment(ctx context.Context, actor *models.User, req *service.CreateShipmentRequest) (*service.CreateShipmentResponse, error)
	ListShipmentsForUser(ctx context.Context, userID int64) ([]models.Shipment, error)
}
