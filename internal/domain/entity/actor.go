package entity

// Roles reconocidos en el token.
const (
	// RoleAdmin capacidad transversal: omite las reglas de rol pero no la tabla de transiciones.
	RoleAdmin = "admin"
	// RoleMember miembro de una organización; actúa como solicitante o receptor.
	RoleMember = "member"
)

// Actor usuario que ejecuta la operación, tal como lo entrega la capa de autenticación.
type Actor struct {
	UserID         string
	Role           string
	OrganizationID string
}

// IsAdmin indica si el actor tiene la capacidad admin.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// BelongsTo indica si el actor pertenece a la organización (admin siempre pertenece).
func (a Actor) BelongsTo(organizationID string) bool {
	return a.IsAdmin() || (organizationID != "" && a.OrganizationID == organizationID)
}
