package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"drivenpass/internal/model"
)

type AccountRepo struct {
	db *bun.DB
}

func NewAccountRepo(db *bun.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Create inserts an account. A taken email yields ErrDuplicate.
func (r *AccountRepo) Create(ctx context.Context, email, passwordHash string) (model.Account, error) {
	row := &accountRow{
		Email:     email,
		Password:  passwordHash,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return model.Account{}, translate(err)
	}
	return row.toModel(), nil
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	var row accountRow
	if err := r.db.NewSelect().Model(&row).Where("email = ?", email).Limit(1).Scan(ctx); err != nil {
		return model.Account{}, translate(err)
	}
	return row.toModel(), nil
}

func (r *AccountRepo) FindByID(ctx context.Context, id int64) (model.Account, error) {
	var row accountRow
	if err := r.db.NewSelect().Model(&row).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return model.Account{}, translate(err)
	}
	return row.toModel(), nil
}
