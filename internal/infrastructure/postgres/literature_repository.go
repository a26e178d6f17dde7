package postgres

import (
	"context"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

var _ repository.LiteratureRepository = (*LiteratureRepo)(nil)

// LiteratureRepo lectura del catálogo sobre PostgreSQL (usable con pool o tx).
type LiteratureRepo struct {
	q Querier
}

// NewLiteratureRepository construye el adaptador del catálogo.
func NewLiteratureRepository(q Querier) *LiteratureRepo {
	return &LiteratureRepo{q: q}
}

// GetByID obtiene un título por ID; nil si no existe.
func (r *LiteratureRepo) GetByID(ctx context.Context, id string) (*entity.Literature, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `
		SELECT id, title, description, category, price, is_active, created_at, updated_at
		FROM literature WHERE id = $1`
	var l entity.Literature
	err := r.q.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.Title, &l.Description, &l.Category, &l.Price, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get literature", err)
	}
	return &l, nil
}
