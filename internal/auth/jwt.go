package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSecret = errors.New("missing secret")
	ErrInvalidClaims = errors.New("invalid claims")
)

type Claims struct {
	OwnerID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// TokenConfig controls signing. Expiry of zero omits the exp claim.
type TokenConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

func DefaultTokenConfig(secret string) TokenConfig {
	return TokenConfig{
		Secret: secret,
		Issuer: "drivenpass",
	}
}

// CreateToken signs an HS256 token for ownerID with a fresh token id.
func CreateToken(ownerID int64, cfg TokenConfig) (string, Claims, error) {
	if cfg.Secret == "" {
		return "", Claims{}, ErrMissingSecret
	}
	if ownerID <= 0 {
		return "", Claims{}, errors.New("missing ownerID")
	}
	if cfg.Expiry < 0 {
		return "", Claims{}, errors.New("invalid expiry")
	}

	now := time.Now()
	claims := Claims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   cfg.Issuer,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}
	if cfg.Expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(cfg.Expiry))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", Claims{}, err
	}
	return signed, claims, nil
}

func VerifyToken(tokenString string, cfg TokenConfig) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.OwnerID <= 0 || claims.ID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
