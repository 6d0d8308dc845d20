package auth

import "suiteship/internal/models"

// Actions
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionList   = "list"
)

// Resources
const (
	ResourceClients   = "clients"
	ResourceProducts  = "products"
	ResourceCarriers  = "carriers"
	ResourceShipments = "shipments"
	ResourceSettings  = "settings"
)

// policy is the single place role checks live; routes consult Allows instead
// of re-implementing role comparisons inline.
var policy = map[string]map[string][]string{
	ResourceClients: {
		ActionCreate: {models.RoleAdmin},
		ActionRead:   {models.RoleAdmin, models.RoleClient},
		ActionUpdate: {models.RoleAdmin, models.RoleClient},
		ActionList:   {models.RoleAdmin},
	},
	ResourceProducts: {
		ActionCreate: {models.RoleAdmin},
		ActionRead:   {models.RoleAdmin, models.RoleClient},
		ActionList:   {models.RoleAdmin, models.RoleClient},
	},
	ResourceCarriers: {
		ActionCreate: {models.RoleAdmin},
		ActionList:   {models.RoleAdmin, models.RoleClient},
	},
	ResourceShipments: {
		ActionCreate: {models.RoleAdmin, models.RoleClient},
		ActionList:   {models.RoleAdmin, models.RoleClient},
	},
	ResourceSettings: {
		ActionRead:   {models.RoleAdmin},
		ActionUpdate: {models.RoleAdmin},
	},
}

// Allows reports whether a role may perform an action on a resource.
// Ownership checks (a client touching its own profile) are layered on top by
// the handlers; Allows only answers the role question.
func Allows(role, action, resource string) bool {
	actions, ok := policy[resource]
	if !ok {
		return false
	}
	for _, allowed := range actions[action] {
		if allowed == role {
			return true
		}
	}
	return false
}
