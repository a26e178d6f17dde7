package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/litpedidos-api/internal/application/dto"
	"github.com/jhoicas/litpedidos-api/internal/domain"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// organizationChecker es el contrato mínimo que necesita el middleware (lo cumple
// repository.OrganizationRepository).
type organizationChecker interface {
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
}

// RequireActiveOrganization verifica que la organización del token exista y esté activa.
// Debe usarse DESPUÉS de AuthMiddleware. Admin no está atado a una organización.
//
// Comportamiento:
//   - 403 Forbidden → organización inexistente o desactivada.
//   - 503 Service Unavailable → fallo de infraestructura al consultar.
//   - 401 si el token no trae organización.
func RequireActiveOrganization(checker organizationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := GetActor(c)
		if actor.IsAdmin() {
			return c.Next()
		}
		if actor.OrganizationID == "" {
			return writeError(c, fmt.Errorf("organization_id no encontrado en el token: %w", domain.ErrUnauthorized))
		}

		org, err := checker.GetByID(c.Context(), actor.OrganizationID)
		if err != nil {
			log.Error().Err(err).Str("organization_id", actor.OrganizationID).Msg("verificar organización")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "ORGANIZATION_CHECK_FAILED",
				Message: "no se pudo verificar la organización, intente más tarde",
			})
		}
		if org == nil || !org.IsActive {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "ORGANIZATION_INACTIVE",
				Message: "la organización del usuario no está activa",
			})
		}
		return c.Next()
	}
}
