package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/ticketflex/internal/clock"
	"github.com/spec-kit/ticketflex/internal/config"
)

// OpaqueTokenPrefix starts every opaque session token.
const OpaqueTokenPrefix = "fake_token_"

// TokenMinter issues the token stored with a new session. The session guard
// only checks that one is present.
type TokenMinter interface {
	Mint(email string) (string, error)
}

// NewTokenMinter picks the minter named by cfg.TokenMode.
func NewTokenMinter(cfg config.AuthConfig, clk clock.Clock) (TokenMinter, error) {
	switch cfg.TokenMode {
	case config.TokenModeOpaque, "":
		return NewOpaqueMinter(clk), nil
	case config.TokenModeJWT:
		return NewJWTMinter(cfg.JWTSecret, cfg.AccessTokenTTLMinutes, clk), nil
	default:
		return nil, errors.New("unknown token mode " + cfg.TokenMode)
	}
}

// OpaqueMinter produces OpaqueTokenPrefix followed by the unix millisecond
// time. It is not a credential.
type OpaqueMinter struct {
	clock clock.Clock
}

// NewOpaqueMinter builds an OpaqueMinter.
func NewOpaqueMinter(clk clock.Clock) *OpaqueMinter {
	return &OpaqueMinter{clock: clk}
}

func (m *OpaqueMinter) Mint(string) (string, error) {
	return OpaqueTokenPrefix + strconv.FormatInt(m.clock.Now().UnixMilli(), 10), nil
}

// JWTMinter signs an HS256 token whose subject is the session email.
type JWTMinter struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewJWTMinter builds a JWTMinter; ttlMinutes <= 0 defaults to an hour.
func NewJWTMinter(secret string, ttlMinutes int, clk clock.Clock) *JWTMinter {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &JWTMinter{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, clock: clk}
}

func (m *JWTMinter) Mint(email string) (string, error) {
	now := m.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates a token minted by m and returns its subject.
func (m *JWTMinter) Parse(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.clock.Now))
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token claims")
	}
	return claims.Subject, nil
}
