package auth

import (
	"testing"

	"suiteship/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAllows(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		action   string
		resource string
		want     bool
	}{
		{"admin creates products", models.RoleAdmin, ActionCreate, ResourceProducts, true},
		{"client cannot create products", models.RoleClient, ActionCreate, ResourceProducts, false},
		{"client cannot create carriers", models.RoleClient, ActionCreate, ResourceCarriers, false},
		{"client cannot create clients", models.RoleClient, ActionCreate, ResourceClients, false},
		{"client cannot list clients", models.RoleClient, ActionList, ResourceClients, false},
		{"admin lists clients", models.RoleAdmin, ActionList, ResourceClients, true},
		{"client lists products", models.RoleClient, ActionList, ResourceProducts, true},
		{"client lists carriers", models.RoleClient, ActionList, ResourceCarriers, true},
		{"client creates shipments", models.RoleClient, ActionCreate, ResourceShipments, true},
		{"client reads own client", models.RoleClient, ActionRead, ResourceClients, true},
		{"client updates client", models.RoleClient, ActionUpdate, ResourceClients, true},
		{"client cannot read settings", models.RoleClient, ActionRead, ResourceSettings, false},
		{"admin updates settings", models.RoleAdmin, ActionUpdate, ResourceSettings, true},
		{"unknown resource denied", models.RoleAdmin, ActionRead, "invoices", false},
		{"unknown action denied", models.RoleAdmin, "delete", ResourceProducts, false},
		{"unknown role denied", "SUPPORT", ActionList, ResourceProducts, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allows(tt.role, tt.action, tt.resource))
		})
	}
}
