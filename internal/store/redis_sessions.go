package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"drivenpass/internal/model"
)

const sessionKeyPrefix = "drivenpass:session:"

// RedisSessions keeps the session registry in Redis. Sessions with an
// expiry are stored with a matching TTL.
type RedisSessions struct {
	client *redis.Client
}

type redisSession struct {
	OwnerID   int64      `json:"ownerId"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func NewRedisSessions(ctx context.Context, addr, password string, db int) (*RedisSessions, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisSessions{client: client}, nil
}

func NewRedisSessionsFromClient(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func (r *RedisSessions) Create(ctx context.Context, s model.Session) error {
	var ttl time.Duration
	if s.ExpiresAt != nil {
		ttl = time.Until(*s.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	payload, err := json.Marshal(redisSession{OwnerID: s.OwnerID, CreatedAt: created.UTC(), ExpiresAt: s.ExpiresAt})
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, sessionKeyPrefix+s.TokenID, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	if !ok {
		return ErrDuplicate
	}
	return nil
}

func (r *RedisSessions) Lookup(ctx context.Context, tokenID string) (model.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+tokenID).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("redis get session: %w", err)
	}
	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return model.Session{}, fmt.Errorf("decode session: %w", err)
	}
	s := model.Session{TokenID: tokenID, OwnerID: rs.OwnerID, CreatedAt: rs.CreatedAt, ExpiresAt: rs.ExpiresAt}
	if s.Expired(time.Now()) {
		return model.Session{}, ErrNotFound
	}
	return s, nil
}

func (r *RedisSessions) Delete(ctx context.Context, tokenID string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+tokenID).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func (r *RedisSessions) Close() error {
	return r.client.Close()
}
