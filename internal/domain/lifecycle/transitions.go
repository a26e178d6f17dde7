// Package lifecycle define la máquina de estados del pedido como datos:
// cada estado lista sus aristas permitidas, quién puede dispararlas y qué
// efecto tienen sobre el inventario.
package lifecycle

import (
	"github.com/jhoicas/litpedidos-api/internal/domain"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// Relation relación del actor con el pedido. Se combina como máscara de bits.
type Relation uint8

const (
	RelRequester Relation = 1 << iota // organización origen (fromOrganization)
	RelReceiver                       // organización destino (toOrganization)
)

// Has indica si r incluye alguna de las relaciones de other.
func (r Relation) Has(other Relation) bool {
	return r&other != 0
}

func (r Relation) String() string {
	switch r {
	case RelRequester:
		return "solicitante"
	case RelReceiver:
		return "receptor"
	case RelRequester | RelReceiver:
		return "solicitante o receptor"
	default:
		return "ninguna"
	}
}

// Effect efecto de inventario de una transición.
type Effect uint8

const (
	EffectNone    Effect = iota
	EffectReserve        // reservar en el stock del receptor
	EffectRelease        // liberar la reserva hecha en APPROVED
	EffectCommit         // descontar stock y reserva, un OUTGOING por ítem
	EffectReceive        // INCOMING en el solicitante (según configuración)
)

// Edge arista del grafo de estados.
type Edge struct {
	To      entity.OrderStatus
	Allowed Relation
	Effect  Effect
}

// table aristas salientes por estado. Lo que no está aquí no existe.
var table = map[entity.OrderStatus][]Edge{
	entity.OrderStatusDraft: {
		{To: entity.OrderStatusPending, Allowed: RelRequester},
		{To: entity.OrderStatusRejected, Allowed: RelRequester | RelReceiver},
	},
	entity.OrderStatusPending: {
		{To: entity.OrderStatusApproved, Allowed: RelReceiver, Effect: EffectReserve},
		{To: entity.OrderStatusRejected, Allowed: RelReceiver},
	},
	entity.OrderStatusApproved: {
		{To: entity.OrderStatusInAssembly, Allowed: RelReceiver},
		{To: entity.OrderStatusRejected, Allowed: RelReceiver, Effect: EffectRelease},
	},
	entity.OrderStatusInAssembly: {
		{To: entity.OrderStatusShipped, Allowed: RelReceiver, Effect: EffectCommit},
		{To: entity.OrderStatusApproved, Allowed: RelReceiver},
	},
	entity.OrderStatusShipped: {
		{To: entity.OrderStatusDelivered, Allowed: RelRequester, Effect: EffectReceive},
	},
	entity.OrderStatusDelivered: {
		{To: entity.OrderStatusCompleted, Allowed: RelRequester},
	},
}

// Lookup busca la arista from->to.
func Lookup(from, to entity.OrderStatus) (Edge, bool) {
	for _, e := range table[from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// Next aristas salientes de un estado (copia).
func Next(from entity.OrderStatus) []Edge {
	edges := table[from]
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// RelationOf calcula la relación del actor con el pedido. Un pedido sin
// organización origen tiene como solicitante al usuario que lo creó.
func RelationOf(actor entity.Actor, order *entity.Order) Relation {
	var rel Relation
	if order.FromOrganizationID != nil {
		if actor.OrganizationID != "" && actor.OrganizationID == *order.FromOrganizationID {
			rel |= RelRequester
		}
	} else if actor.UserID != "" && actor.UserID == order.CreatedBy {
		rel |= RelRequester
	}
	if actor.OrganizationID != "" && actor.OrganizationID == order.ToOrganizationID {
		rel |= RelReceiver
	}
	return rel
}

// Authorize valida que exista la arista y que el actor pueda dispararla.
// Admin omite la relación, nunca la tabla.
func Authorize(actor entity.Actor, order *entity.Order, to entity.OrderStatus) (Edge, error) {
	edge, ok := Lookup(order.Status, to)
	if !ok {
		return Edge{}, &domain.TransitionError{
			From:   order.Status.String(),
			To:     to.String(),
			Reason: "no existe en el flujo del pedido",
		}
	}
	if actor.IsAdmin() {
		return edge, nil
	}
	if !RelationOf(actor, order).Has(edge.Allowed) {
		return Edge{}, &domain.TransitionError{
			From:   order.Status.String(),
			To:     to.String(),
			Reason: "solo la puede ejecutar el " + edge.Allowed.String(),
		}
	}
	return edge, nil
}
