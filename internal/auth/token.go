package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "fintrack"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the bearer token payload.
type Claims struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// Tokens issues and parses HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the principal.
func (t *Tokens) Issue(p Principal) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := &Claims{
		AccountID: p.AccountID,
		Username:  p.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(p.AccountID, 10),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse validates the signature, expiry and issuer and returns the principal.
func (t *Tokens) Parse(tokenStr string) (Principal, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID <= 0 {
		return Principal{}, ErrInvalidToken
	}
	return Principal{AccountID: claims.AccountID, Username: claims.Username}, nil
}
