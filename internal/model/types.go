package model

import "time"

type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Kind names a secret variant.
type Kind string

const (
	KindCredential Kind = "credential"
	KindNetwork    Kind = "network"
)

// SecretRecord is the persisted form of any secret variant. Password holds
// ciphertext. Fields not used by a variant are empty.
type SecretRecord struct {
	ID        int64
	OwnerID   int64
	Kind      Kind
	Title     string
	URL       string
	Username  string
	Network   string
	Password  string
	CreatedAt time.Time
}

// Session binds an issued token id to its owner. A nil ExpiresAt never expires.
type Session struct {
	TokenID   string
	OwnerID   int64
	CreatedAt time.Time
	ExpiresAt *time.Time
}

func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
