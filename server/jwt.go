package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

// JWTAuth verifies bearer tokens issued by an external identity provider
type JWTAuth struct {
	parser   *jwt.Parser
	keyFunc  jwt.Keyfunc
	jwks     *keyfunc.JWKS
	audience string
	issuer   string
}

// NewHS256Auth verifies tokens signed with a shared secret
func NewHS256Auth(secret []byte, audience, issuer string) *JWTAuth {
	return &JWTAuth{
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
		keyFunc: func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return secret, nil
		},
		audience: audience,
		issuer:   issuer,
	}
}

// NewJWKSAuth verifies RS256 tokens against a remote key set
func NewJWKSAuth(url, audience, issuer string) (*JWTAuth, error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load jwks: %w", err)
	}
	return &JWTAuth{
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
		keyFunc:  jwks.Keyfunc,
		jwks:     jwks,
		audience: audience,
		issuer:   issuer,
	}, nil
}

// Close stops the key set refresh
func (a *JWTAuth) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// Verify checks the token and returns its subject. A "role" claim of
// "admin" marks the caller as admin.
func (a *JWTAuth) Verify(token string) (Principal, error) {
	parsed, err := a.parser.Parse(token, a.keyFunc)
	if err != nil {
		return Principal{}, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("invalid claims")
	}
	if a.audience != "" && !claims.VerifyAudience(a.audience, true) {
		return Principal{}, errors.New("invalid audience")
	}
	if a.issuer != "" && !claims.VerifyIssuer(a.issuer, true) {
		return Principal{}, errors.New("invalid issuer")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Principal{}, errors.New("missing sub")
	}
	name, _ := claims["name"].(string)
	if name == "" {
		name = sub
	}
	role, _ := claims["role"].(string)

	return Principal{UserID: sub, Name: name, Admin: role == "admin", viaJWT: true}, nil
}
