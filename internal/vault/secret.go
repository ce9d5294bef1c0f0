package vault

import (
	"encoding/json"
	"time"
)

// Secret is a decrypted secret of one variant. Password is plaintext.
type Secret[P any] struct {
	ID        int64
	OwnerID   int64
	Title     string
	Fields    P
	Password  string
	CreatedAt time.Time
}

// MarshalJSON flattens Fields next to the common attributes.
func (s Secret[P]) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	raw, err := json.Marshal(s.Fields)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	out["id"] = s.ID
	out["userId"] = s.OwnerID
	out["title"] = s.Title
	out["password"] = s.Password
	out["createdAt"] = s.CreatedAt
	return json.Marshal(out)
}

type NewSecret[P any] struct {
	Title    string
	Fields   P
	Password string
}

const (
	EventSecretCreated = "secret.created"
	EventSecretDeleted = "secret.deleted"
)

// Event is published to the owner's change feed after a mutation.
type Event struct {
	Type  string `json:"type"`
	Kind  string `json:"kind"`
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type Notifier interface {
	Notify(ownerID int64, ev Event)
}

type NotifierFunc func(ownerID int64, ev Event)

func (f NotifierFunc) Notify(ownerID int64, ev Event) { f(ownerID, ev) }
