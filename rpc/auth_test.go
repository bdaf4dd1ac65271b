package rpc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nftmarket/core/types"
)

func authRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestIssueTokenRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tok, err := IssueToken(testSecret, alice, time.Hour, now)
	require.NoError(t, err)

	auth := NewAuthenticator(testSecret)
	auth.now = func() time.Time { return now.Add(30 * time.Minute) }
	caller, rpcErr := auth.Caller(authRequest(tok))
	require.Nil(t, rpcErr)
	require.Equal(t, alice, caller)
}

func TestCallerRejectsExpiredToken(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tok, err := IssueToken(testSecret, alice, time.Minute, now)
	require.NoError(t, err)

	auth := NewAuthenticator(testSecret)
	auth.now = func() time.Time { return now.Add(time.Minute + auth.leeway + time.Second) }
	_, rpcErr := auth.Caller(authRequest(tok))
	require.NotNil(t, rpcErr)
	require.Equal(t, codeUnauthorized, rpcErr.Code)

	auth.now = func() time.Time { return now.Add(time.Minute + time.Second) }
	_, rpcErr = auth.Caller(authRequest(tok))
	require.Nil(t, rpcErr, "leeway covers small clock skew")
}

func TestCallerRejectsMalformedHeaders(t *testing.T) {
	auth := NewAuthenticator(testSecret)

	_, rpcErr := auth.Caller(authRequest(""))
	require.Equal(t, "missing Authorization header", rpcErr.Message)

	req := authRequest("")
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	_, rpcErr = auth.Caller(req)
	require.Equal(t, "Authorization header must use Bearer scheme", rpcErr.Message)

	_, rpcErr = auth.Caller(authRequest("not-a-jwt"))
	require.Equal(t, "invalid token", rpcErr.Message)

	_, rpcErr = NewAuthenticator("").Caller(authRequest("anything"))
	require.Equal(t, "RPC authentication not configured", rpcErr.Message)
}

func TestIssueTokenValidatesInputs(t *testing.T) {
	_, err := IssueToken("", alice, time.Hour, time.Now())
	require.Error(t, err)
	_, err = IssueToken(testSecret, types.Address{}, time.Hour, time.Now())
	require.Error(t, err)
}
