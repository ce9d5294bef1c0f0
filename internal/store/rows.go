package store

import (
	"time"

	"github.com/uptrace/bun"

	"drivenpass/internal/model"
)

type accountRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Email     string    `bun:"email,notnull"`
	Password  string    `bun:"password,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (r accountRow) toModel() model.Account {
	return model.Account{ID: r.ID, Email: r.Email, PasswordHash: r.Password, CreatedAt: r.CreatedAt}
}

type secretRow struct {
	bun.BaseModel `bun:"table:secrets,alias:s"`

	ID        int64     `bun:"id,pk,autoincrement"`
	OwnerID   int64     `bun:"owner_id,notnull"`
	Kind      string    `bun:"kind,notnull"`
	Title     string    `bun:"title,notnull"`
	URL       string    `bun:"url,notnull"`
	Username  string    `bun:"username,notnull"`
	Network   string    `bun:"network,notnull"`
	Password  string    `bun:"password,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func secretRowFrom(rec model.SecretRecord) secretRow {
	return secretRow{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Kind:      string(rec.Kind),
		Title:     rec.Title,
		URL:       rec.URL,
		Username:  rec.Username,
		Network:   rec.Network,
		Password:  rec.Password,
		CreatedAt: rec.CreatedAt,
	}
}

func (r secretRow) toModel() model.SecretRecord {
	return model.SecretRecord{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Kind:      model.Kind(r.Kind),
		Title:     r.Title,
		URL:       r.URL,
		Username:  r.Username,
		Network:   r.Network,
		Password:  r.Password,
		CreatedAt: r.CreatedAt,
	}
}

type sessionRow struct {
	bun.BaseModel `bun:"table:sessions,alias:ss"`

	TokenID   string     `bun:"token_id,pk"`
	OwnerID   int64      `bun:"owner_id,notnull"`
	CreatedAt time.Time  `bun:"created_at,notnull"`
	ExpiresAt *time.Time `bun:"expires_at,nullzero"`
}

func (r sessionRow) toModel() model.Session {
	return model.Session{TokenID: r.TokenID, OwnerID: r.OwnerID, CreatedAt: r.CreatedAt, ExpiresAt: r.ExpiresAt}
}
