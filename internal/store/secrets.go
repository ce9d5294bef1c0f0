package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"drivenpass/internal/model"
)

// SecretRepo persists every secret variant in one table. Titles are unique
// per owner across variants.
type SecretRepo struct {
	db *bun.DB
}

func NewSecretRepo(db *bun.DB) *SecretRepo {
	return &SecretRepo{db: db}
}

// Create inserts rec and fills in its ID and CreatedAt.
func (r *SecretRepo) Create(ctx context.Context, rec *model.SecretRecord) error {
	rec.CreatedAt = time.Now().UTC()
	row := secretRowFrom(*rec)
	row.ID = 0
	if _, err := r.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return translate(err)
	}
	rec.ID = row.ID
	return nil
}

func (r *SecretRepo) FindByTitle(ctx context.Context, ownerID int64, title string) (model.SecretRecord, error) {
	var row secretRow
	err := r.db.NewSelect().Model(&row).
		Where("owner_id = ?", ownerID).
		Where("title = ?", title).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return model.SecretRecord{}, translate(err)
	}
	return row.toModel(), nil
}

func (r *SecretRepo) FindByID(ctx context.Context, ownerID int64, kind model.Kind, id int64) (model.SecretRecord, error) {
	var row secretRow
	err := r.db.NewSelect().Model(&row).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Where("kind = ?", string(kind)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return model.SecretRecord{}, translate(err)
	}
	return row.toModel(), nil
}

func (r *SecretRepo) ListByOwner(ctx context.Context, ownerID int64, kind model.Kind) ([]model.SecretRecord, error) {
	var rows []secretRow
	err := r.db.NewSelect().Model(&rows).
		Where("owner_id = ?", ownerID).
		Where("kind = ?", string(kind)).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]model.SecretRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// Delete removes the owner's record. Zero affected rows yields ErrNotFound.
func (r *SecretRepo) Delete(ctx context.Context, ownerID int64, kind model.Kind, id int64) error {
	res, err := r.db.NewDelete().Model((*secretRow)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Where("kind = ?", string(kind)).
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
