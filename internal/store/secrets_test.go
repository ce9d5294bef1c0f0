package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"drivenpass/internal/model"
)

func TestSecretRepo_SQLite(t *testing.T) {
	exerciseSecretRepo(t, newTestDB(t))
}

func TestSecretRepo_Postgres(t *testing.T) {
	exerciseSecretRepo(t, newPostgresDB(t))
}

func exerciseSecretRepo(t *testing.T, db *bun.DB) {
	ctx := context.Background()
	accounts := NewAccountRepo(db)
	repo := NewSecretRepo(db)

	ana, err := accounts.Create(ctx, "ana@example.com", "h")
	require.NoError(t, err)
	bob, err := accounts.Create(ctx, "bob@example.com", "h")
	require.NoError(t, err)

	mail := &model.SecretRecord{OwnerID: ana.ID, Kind: model.KindCredential, Title: "mail", URL: "https://mail", Username: "ana", Password: "c1"}
	require.NoError(t, repo.Create(ctx, mail))
	assert.Positive(t, mail.ID)

	wifi := &model.SecretRecord{OwnerID: ana.ID, Kind: model.KindNetwork, Title: "wifi", Network: "home", Password: "c2"}
	require.NoError(t, repo.Create(ctx, wifi))

	t.Run("title unique per owner across kinds", func(t *testing.T) {
		dup := &model.SecretRecord{OwnerID: ana.ID, Kind: model.KindNetwork, Title: "mail", Network: "x", Password: "c"}
		assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)
	})

	t.Run("same title for another owner", func(t *testing.T) {
		other := &model.SecretRecord{OwnerID: bob.ID, Kind: model.KindCredential, Title: "mail", Password: "c"}
		require.NoError(t, repo.Create(ctx, other))
	})

	t.Run("find by title", func(t *testing.T) {
		got, err := repo.FindByTitle(ctx, ana.ID, "wifi")
		require.NoError(t, err)
		assert.Equal(t, wifi.ID, got.ID)
		assert.Equal(t, model.KindNetwork, got.Kind)

		_, err = repo.FindByTitle(ctx, ana.ID, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find by id is scoped by owner and kind", func(t *testing.T) {
		got, err := repo.FindByID(ctx, ana.ID, model.KindCredential, mail.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://mail", got.URL)
		assert.Equal(t, "ana", got.Username)
		assert.Equal(t, "c1", got.Password)

		_, err = repo.FindByID(ctx, bob.ID, model.KindCredential, mail.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = repo.FindByID(ctx, ana.ID, model.KindNetwork, mail.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list by owner and kind", func(t *testing.T) {
		creds, err := repo.ListByOwner(ctx, ana.ID, model.KindCredential)
		require.NoError(t, err)
		require.Len(t, creds, 1)
		assert.Equal(t, mail.ID, creds[0].ID)

		nets, err := repo.ListByOwner(ctx, bob.ID, model.KindNetwork)
		require.NoError(t, err)
		assert.Empty(t, nets)
	})

	t.Run("delete is scoped by owner", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, bob.ID, model.KindNetwork, wifi.ID), ErrNotFound)
		require.NoError(t, repo.Delete(ctx, ana.ID, model.KindNetwork, wifi.ID))
		assert.ErrorIs(t, repo.Delete(ctx, ana.ID, model.KindNetwork, wifi.ID), ErrNotFound)

		// The title is free again once deleted.
		again := &model.SecretRecord{OwnerID: ana.ID, Kind: model.KindCredential, Title: "wifi", Password: "c"}
		require.NoError(t, repo.Create(ctx, again))
	})
}
