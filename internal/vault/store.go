// Package vault stores encrypted secrets on behalf of their owners.
//
// Store is generic over the variant payload so credentials and networks
// share one implementation of create, get-by-id, list-all and delete.
// Every stored password is ciphertext and every returned password is
// plaintext.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"drivenpass/internal/apperr"
	"drivenpass/internal/model"
	"drivenpass/internal/store"
)

type Repository interface {
	Create(ctx context.Context, rec *model.SecretRecord) error
	FindByTitle(ctx context.Context, ownerID int64, title string) (model.SecretRecord, error)
	FindByID(ctx context.Context, ownerID int64, kind model.Kind, id int64) (model.SecretRecord, error)
	ListByOwner(ctx context.Context, ownerID int64, kind model.Kind) ([]model.SecretRecord, error)
	Delete(ctx context.Context, ownerID int64, kind model.Kind, id int64) error
}

type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type Deps struct {
	Repo   Repository
	Cipher Cipher
	// Events is optional.
	Events Notifier
	Log    *slog.Logger
}

type Store[P any] struct {
	variant Variant[P]
	repo    Repository
	cipher  Cipher
	events  Notifier
	log     *slog.Logger
}

func NewStore[P any](variant Variant[P], deps Deps) *Store[P] {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	return &Store[P]{
		variant: variant,
		repo:    deps.Repo,
		cipher:  deps.Cipher,
		events:  deps.Events,
		log:     log.With("kind", string(variant.Kind)),
	}
}

func errRequired(field string) error {
	return apperr.Validation(field + " is required")
}

func (s *Store[P]) notFound() error {
	return apperr.NotFound(s.variant.Label + " not found")
}

// Create stores a new secret. The title must be unused by any of the
// owner's secrets of any variant.
func (s *Store[P]) Create(ctx context.Context, ownerID int64, in NewSecret[P]) (Secret[P], error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return Secret[P]{}, errRequired("title")
	}
	if in.Password == "" {
		return Secret[P]{}, errRequired("password")
	}
	if s.variant.Validate != nil {
		if err := s.variant.Validate(in.Fields); err != nil {
			return Secret[P]{}, err
		}
	}

	_, err := s.repo.FindByTitle(ctx, ownerID, in.Title)
	switch {
	case err == nil:
		return Secret[P]{}, apperr.DuplicateTitle()
	case !errors.Is(err, store.ErrNotFound):
		return Secret[P]{}, fmt.Errorf("check title: %w", err)
	}

	sealed, err := s.cipher.Encrypt(in.Password)
	if err != nil {
		return Secret[P]{}, err
	}
	rec := model.SecretRecord{
		OwnerID:  ownerID,
		Kind:     s.variant.Kind,
		Title:    in.Title,
		Password: sealed,
	}
	s.variant.Encode(in.Fields, &rec)

	if err := s.repo.Create(ctx, &rec); err != nil {
		// A concurrent create may win the title between check and insert.
		if errors.Is(err, store.ErrDuplicate) {
			return Secret[P]{}, apperr.DuplicateTitle()
		}
		return Secret[P]{}, fmt.Errorf("insert %s: %w", s.variant.Label, err)
	}

	s.log.Info("secret created", "owner_id", ownerID, "secret_id", rec.ID)
	s.notify(ownerID, EventSecretCreated, rec)
	return s.secretFrom(rec, in.Password), nil
}

// GetByID returns the owner's secret. A secret owned by someone else is
// reported exactly like a missing one.
func (s *Store[P]) GetByID(ctx context.Context, ownerID, id int64) (Secret[P], error) {
	rec, err := s.repo.FindByID(ctx, ownerID, s.variant.Kind, id)
	if errors.Is(err, store.ErrNotFound) {
		return Secret[P]{}, s.notFound()
	}
	if err != nil {
		return Secret[P]{}, fmt.Errorf("find %s: %w", s.variant.Label, err)
	}
	return s.decrypt(rec)
}

func (s *Store[P]) ListAll(ctx context.Context, ownerID int64) ([]Secret[P], error) {
	recs, err := s.repo.ListByOwner(ctx, ownerID, s.variant.Kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.variant.Label, err)
	}
	out := make([]Secret[P], 0, len(recs))
	for _, rec := range recs {
		secret, err := s.decrypt(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, secret)
	}
	return out, nil
}

func (s *Store[P]) Delete(ctx context.Context, ownerID, id int64) error {
	rec, err := s.repo.FindByID(ctx, ownerID, s.variant.Kind, id)
	if errors.Is(err, store.ErrNotFound) {
		return s.notFound()
	}
	if err != nil {
		return fmt.Errorf("find %s: %w", s.variant.Label, err)
	}

	err = s.repo.Delete(ctx, ownerID, s.variant.Kind, id)
	if errors.Is(err, store.ErrNotFound) {
		return s.notFound()
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.variant.Label, err)
	}

	s.log.Info("secret deleted", "owner_id", ownerID, "secret_id", id)
	s.notify(ownerID, EventSecretDeleted, rec)
	return nil
}

func (s *Store[P]) decrypt(rec model.SecretRecord) (Secret[P], error) {
	plain, err := s.cipher.Decrypt(rec.Password)
	if err != nil {
		s.log.Error("decrypt failed", "owner_id", rec.OwnerID, "secret_id", rec.ID, "error", err)
		return Secret[P]{}, err
	}
	return s.secretFrom(rec, plain), nil
}

func (s *Store[P]) secretFrom(rec model.SecretRecord, password string) Secret[P] {
	return Secret[P]{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Title:     rec.Title,
		Fields:    s.variant.Decode(rec),
		Password:  password,
		CreatedAt: rec.CreatedAt,
	}
}

func (s *Store[P]) notify(ownerID int64, typ string, rec model.SecretRecord) {
	if s.events == nil {
		return
	}
	s.events.Notify(ownerID, Event{Type: typ, Kind: string(rec.Kind), ID: rec.ID, Title: rec.Title})
}
