package rpc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"nftmarket/core/types"
)

// Authenticator turns an HS256 bearer token into the calling account. The
// account is the bech32 address in the token's sub claim.
type Authenticator struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{
		secret: []byte(strings.TrimSpace(secret)),
		leeway: 2 * time.Minute,
		now:    time.Now,
	}
}

// Caller authenticates r.
func (a *Authenticator) Caller(r *http.Request) (types.Address, *RPCError) {
	if a == nil || len(a.secret) == 0 {
		return types.Address{}, &RPCError{Code: codeUnauthorized, Message: "RPC authentication not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return types.Address{}, &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	tokenString := extractBearer(header)
	if tokenString == "" {
		return types.Address{}, &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	caller, err := a.parse(tokenString)
	if err != nil {
		return types.Address{}, &RPCError{Code: codeUnauthorized, Message: "invalid token", Data: err.Error()}
	}
	return caller, nil
}

func (a *Authenticator) parse(tokenString string) (types.Address, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.leeway),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return types.Address{}, err
	}
	if !token.Valid {
		return types.Address{}, errors.New("token invalid")
	}
	if claims.Subject == "" {
		return types.Address{}, errors.New("sub claim required")
	}
	return types.ParseAddress(claims.Subject)
}

// IssueToken signs a token for caller. A non-positive ttl issues a token
// without expiry.
func IssueToken(secret string, caller types.Address, ttl time.Duration, now time.Time) (string, error) {
	key := []byte(strings.TrimSpace(secret))
	if len(key) == 0 {
		return "", fmt.Errorf("jwt secret required")
	}
	if caller.IsZero() {
		return "", fmt.Errorf("caller address required")
	}
	claims := jwt.RegisteredClaims{
		Subject:  caller.String(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func extractBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
