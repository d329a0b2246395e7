// internal/app/system/auth/tokens.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
)

// Token lifetimes. The access token is short-lived relative to the refresh
// token; the middleware silently re-issues both when a valid refresh token
// accompanies an expired access token.
const (
	AccessTokenTTL  = 7 * 24 * time.Hour
	RefreshTokenTTL = 60 * 24 * time.Hour
)

// Token type discriminators stored in the "type" claim so a refresh token
// can never pass as an access token.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrTokenExpired marks an otherwise valid token past its expiry. The
// middleware uses it to decide whether a silent refresh is worth trying.
var ErrTokenExpired = errors.New("token expired")

// Claims is the verified content of a token.
type Claims struct {
	UserID string
	Email  string
	Role   string
	Type   string
}

// Tokens signs and verifies the HS256 tokens carried in auth cookies.
type Tokens struct {
	secret []byte
}

// NewTokens creates a token signer. The secret must be non-empty; token
// security rests entirely on it.
func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Tokens{secret: []byte(secret)}, nil
}

// Pair holds one access and one refresh token issued together.
type Pair struct {
	Access  string
	Refresh string
}

// GeneratePair issues an access/refresh token pair for an identity.
func (t *Tokens) GeneratePair(userID, email, role string) (Pair, error) {
	access, err := t.generate(jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"type":  tokenTypeAccess,
		"exp":   time.Now().Add(AccessTokenTTL).Unix(),
	})
	if err != nil {
		return Pair{}, err
	}

	refresh, err := t.generate(jwt.MapClaims{
		"sub":  userID,
		"type": tokenTypeRefresh,
		"exp":  time.Now().Add(RefreshTokenTTL).Unix(),
	})
	if err != nil {
		return Pair{}, err
	}

	return Pair{Access: access, Refresh: refresh}, nil
}

func (t *Tokens) generate(claims jwt.MapClaims) (string, error) {
	claims["iat"] = time.Now().Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseAccess verifies an access token and returns its claims.
// Expired tokens return ErrTokenExpired; any other defect returns a
// 401-mapped error.
func (t *Tokens) ParseAccess(raw string) (*Claims, error) {
	return t.parse(raw, tokenTypeAccess)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (t *Tokens) ParseRefresh(raw string) (*Claims, error) {
	return t.parse(raw, tokenTypeRefresh)
}

func (t *Tokens) parse(raw, wantType string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, apperr.Wrap(401, "invalid token", err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthorized("invalid token")
	}

	claims := &Claims{
		UserID: stringClaim(mc, "sub"),
		Email:  stringClaim(mc, "email"),
		Role:   stringClaim(mc, "role"),
		Type:   stringClaim(mc, "type"),
	}
	if claims.Type != wantType {
		return nil, apperr.Unauthorized("invalid token type")
	}
	if claims.UserID == "" {
		return nil, apperr.Unauthorized("token missing subject")
	}
	return claims, nil
}

func stringClaim(mc jwt.MapClaims, key string) string {
	if v, ok := mc[key].(string); ok {
		return v
	}
	return ""
}
