package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"drivenpass/internal/model"
)

// SessionRepo keeps the session registry in the sessions table.
type SessionRepo struct {
	db  *bun.DB
	now func() time.Time
}

func NewSessionRepo(db *bun.DB) *SessionRepo {
	return &SessionRepo{db: db, now: time.Now}
}

func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	row := &sessionRow{TokenID: s.TokenID, OwnerID: s.OwnerID, CreatedAt: s.CreatedAt.UTC(), ExpiresAt: s.ExpiresAt}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = r.now().UTC()
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return translate(err)
	}
	return nil
}

// Lookup returns ErrNotFound for unknown or expired sessions.
func (r *SessionRepo) Lookup(ctx context.Context, tokenID string) (model.Session, error) {
	var row sessionRow
	if err := r.db.NewSelect().Model(&row).Where("token_id = ?", tokenID).Limit(1).Scan(ctx); err != nil {
		return model.Session{}, translate(err)
	}
	s := row.toModel()
	if s.Expired(r.now()) {
		return model.Session{}, ErrNotFound
	}
	return s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, tokenID string) error {
	_, err := r.db.NewDelete().Model((*sessionRow)(nil)).Where("token_id = ?", tokenID).Exec(ctx)
	return translate(err)
}
