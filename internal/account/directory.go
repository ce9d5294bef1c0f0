package account

import (
	"context"
	"errors"

	"drivenpass/internal/apperr"
	"drivenpass/internal/model"
	"drivenpass/internal/store"
)

type Repository interface {
	Create(ctx context.Context, email, passwordHash string) (model.Account, error)
	FindByEmail(ctx context.Context, email string) (model.Account, error)
	FindByID(ctx context.Context, id int64) (model.Account, error)
}

// Directory owns account records. It never sees plaintext passwords.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) CreateAccount(ctx context.Context, email, passwordHash string) (model.Account, error) {
	a, err := d.repo.Create(ctx, email, passwordHash)
	if errors.Is(err, store.ErrDuplicate) {
		return model.Account{}, apperr.DuplicateEmail()
	}
	return a, err
}

// FindByEmail reports absence with ok=false rather than an error.
func (d *Directory) FindByEmail(ctx context.Context, email string) (model.Account, bool, error) {
	a, err := d.repo.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, err
	}
	return a, true, nil
}

func (d *Directory) FindByID(ctx context.Context, id int64) (model.Account, error) {
	a, err := d.repo.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Account{}, apperr.NotFound("account not found")
	}
	return a, err
}
