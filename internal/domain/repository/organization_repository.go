package repository

import (
	"context"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// OrganizationRepository lectura de organizaciones (el CRUD de la jerarquía vive fuera de este servicio).
type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
}
