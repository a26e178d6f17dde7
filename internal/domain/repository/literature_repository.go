package repository

import (
	"context"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// LiteratureRepository lectura del catálogo para capturar precios.
type LiteratureRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Literature, error)
}
