package entity

import "time"

// Tipos de organización en la jerarquía (group < local_subcommittee < locality < region).
const (
	OrgTypeGroup             = "group"
	OrgTypeLocalSubcommittee = "local_subcommittee"
	OrgTypeLocality          = "locality"
	OrgTypeRegion            = "region"
)

// Organization nodo de la jerarquía que envía/recibe pedidos y mantiene inventario.
type Organization struct {
	ID        string
	Name      string
	Type      string
	ParentID  *string // nil solo para region
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
