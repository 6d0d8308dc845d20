package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"suiteship/internal/auth"
	"suiteship/internal/models"
	"suiteship/internal/service"
	"suiteship/internal/store"
	"suiteship/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	auth      AuthService
	clients   ClientService
	catalog   CatalogService
	shipments ShipmentService
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(authService AuthService, clients ClientService, catalog CatalogService, shipments ShipmentService) *Handler {
	return &Handler{
		auth:      authService,
		clients:   clients,
		catalog:   catalog,
		shipments: shipments,
		logger:    util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
	}

	authed := api.Group("")
	authed.Use(h.requireAuth())
	{
		authed.POST("/logout", h.logout)
		authed.GET("/user", h.getCurrentUser)

		authed.GET("/clients", h.authorize(auth.ActionList, auth.ResourceClients), h.listClients)
		authed.GET("/clients/:userId", h.authorize(auth.ActionRead, auth.ResourceClients), h.getClientByUserID)
		authed.PATCH("/clients/:id", h.authorize(auth.ActionUpdate, auth.ResourceClients), h.updateClient)
		authed.POST("/clients", h.authorize(auth.ActionCreate, auth.ResourceClients), h.createClient)

		authed.POST("/products", h.authorize(auth.ActionCreate, auth.ResourceProducts), h.createProduct)
		authed.GET("/products", h.authorize(auth.ActionList, auth.ResourceProducts), h.listProducts)
		authed.GET("/suite-products", h.authorize(auth.ActionList, auth.ResourceProducts), h.listSuiteProducts)

		authed.POST("/carriers", h.authorize(auth.ActionCreate, auth.ResourceCarriers), h.createCarrier)
		authed.GET("/carriers", h.authorize(auth.ActionList, auth.ResourceCarriers), h.listCarriers)

		authed.POST("/shipments", h.authorize(auth.ActionCreate, auth.ResourceShipments), h.createShipment)
		authed.GET("/shipments", h.authorize(auth.ActionList, auth.ResourceShipments), h.listShipments)

		authed.GET("/settings", h.authorize(auth.ActionRead, auth.ResourceSettings), h.getSettings)
		authed.PUT("/settings", h.authorize(auth.ActionUpdate, auth.ResourceSettings), h.saveSettings)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// credentialsRequest is the register/login payload
type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// register handles account creation
func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	setSessionCookie(c, token, h.auth.SessionTTL())
	c.JSON(http.StatusCreated, user)
}

// login handles session creation
func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	setSessionCookie(c, token, h.auth.SessionTTL())
	c.JSON(http.StatusOK, user)
}

// logout destroys the caller's session
func (h *Handler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), tokenFromRequest(c)); err != nil {
		h.writeError(c, err)
		return
	}

	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// getCurrentUser returns the authenticated user
func (h *Handler) getCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// listClients returns all client profiles (admin dashboard)
func (h *Handler) listClients(c *gin.Context) {
	clients, err := h.clients.ListClients(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// getClientByUserID returns the client profile owned by a user. Non-admins
// may only look up their own profile.
func (h *Handler) getClientByUserID(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	actor := currentUser(c)
	if actor.Role != models.RoleAdmin && actor.ID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	client, err := h.clients.GetClientByUserID(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// updateClient applies a partial update. Non-admins may only update the
// profile they own.
func (h *Handler) updateClient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
		return
	}

	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	actor := currentUser(c)
	asAdmin := actor.Role == models.RoleAdmin
	if !asAdmin {
		existing, err := h.clients.GetClientByID(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err)
			return
		}
		if existing.UserID != actor.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
	}

	client, err := h.clients.UpdateClient(c.Request.Context(), id, &req, asAdmin)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// createClient opens a client suite (admin only)
func (h *Handler) createClient(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	client, err := h.clients.CreateClient(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// createProduct adds a catalog product (admin only)
func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// listProducts returns the full catalog
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// listSuiteProducts returns the products in the caller's suite
func (h *Handler) listSuiteProducts(c *gin.Context) {
	products, err := h.catalog.SuiteProducts(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// createCarrier registers a carrier (admin only)
func (h *Handler) createCarrier(c *gin.Context) {
	var req service.CreateCarrierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	carrier, err := h.catalog.CreateCarrier(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, carrier)
}

// listCarriers returns all carriers
func (h *Handler) listCarriers(c *gin.Context) {
	carriers, err := h.catalog.ListCarriers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, carriers)
}

// createShipment creates a shipment from the caller's suite
func (h *Handler) createShipment(c *gin.Context) {
	var req service.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.shipments.CreateShipment(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// listShipments returns the shipments of the caller's suite
func (h *Handler) listShipments(c *gin.Context) {
	shipments, err := h.shipments.ListShipmentsForUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipments)
}

// getSettings returns the system settings singleton (admin only)
func (h *Handler) getSettings(c *gin.Context) {
	settings, err := h.catalog.GetSettings(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// saveSettings writes the system settings singleton (admin only)
func (h *Handler) saveSettings(c *gin.Context) {
	var req service.SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	settings, err := h.catalog.SaveSettings(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// writeError maps service and store failures onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"details": err.Error(),
		})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	case errors.Is(err, service.ErrRestrictedField):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, auth.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many failed login attempts"})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
