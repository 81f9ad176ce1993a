package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

const issuer = "maintex-gateway"

// StateClaims is the signed OAuth state parameter. The nonce is also kept
// in the caller's session and both must match on callback.
type StateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// GenerateStateToken signs a state token for nonce valid for ttl
func GenerateStateToken(nonce, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := StateClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateStateToken validates a state token and returns its claims
func ValidateStateToken(tokenString, secret string) (*StateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*StateClaims); ok && token.Valid && claims.Nonce != "" {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}
