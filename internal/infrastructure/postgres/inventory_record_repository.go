package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo stock por organización y literatura sobre PostgreSQL (usable con pool o tx).
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

const recordColumns = `organization_id, literature_id, quantity, reserved_quantity, created_at, updated_at`

// Get obtiene el stock actual; si no hay fila devuelve un registro en cero.
func (r *InventoryRecordRepo) Get(ctx context.Context, organizationID, literatureID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM inventory_records WHERE organization_id = $1 AND literature_id = $2`
	var rec entity.InventoryRecord
	err := r.q.QueryRow(ctx, query, organizationID, literatureID).Scan(
		&rec.OrganizationID, &rec.LiteratureID, &rec.Quantity, &rec.ReservedQuantity, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return &entity.InventoryRecord{OrganizationID: organizationID, LiteratureID: literatureID}, nil
		}
		return nil, wrapErr("get inventory record", err)
	}
	return &rec, nil
}

// GetForUpdate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE)
// hasta el fin de la transacción; siempre hay una fila que bloquear.
func (r *InventoryRecordRepo) GetForUpdate(ctx context.Context, organizationID, literatureID string) (*entity.InventoryRecord, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_records (organization_id, literature_id, quantity, reserved_quantity, created_at, updated_at)
		VALUES ($1, $2, 0, 0, now(), now())
		ON CONFLICT (organization_id, literature_id) DO NOTHING`, organizationID, literatureID)
	if err != nil {
		return nil, wrapErr("ensure inventory record", err)
	}
	query := `SELECT ` + recordColumns + `
		FROM inventory_records WHERE organization_id = $1 AND literature_id = $2
		FOR UPDATE`
	var rec entity.InventoryRecord
	err = r.q.QueryRow(ctx, query, organizationID, literatureID).Scan(
		&rec.OrganizationID, &rec.LiteratureID, &rec.Quantity, &rec.ReservedQuantity, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, wrapErr("get inventory record for update", err)
	}
	return &rec, nil
}

// Upsert inserta o actualiza cantidad y reserva.
func (r *InventoryRecordRepo) Upsert(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (organization_id, literature_id, quantity, reserved_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (organization_id, literature_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, reserved_quantity = EXCLUDED.reserved_quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		rec.OrganizationID, rec.LiteratureID, rec.Quantity, rec.ReservedQuantity, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return wrapErr("upsert inventory record", err)
	}
	return nil
}

// ListByOrganization stock de una organización ordenado por literatura.
func (r *InventoryRecordRepo) ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]*entity.InventoryRecord, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_records WHERE organization_id = $1`, organizationID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory records: %w", err)
	}
	query := `SELECT ` + recordColumns + `
		FROM inventory_records WHERE organization_id = $1
		ORDER BY literature_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryRecord, 0)
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(&rec.OrganizationID, &rec.LiteratureID, &rec.Quantity, &rec.ReservedQuantity, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, total, rows.Err()
}
