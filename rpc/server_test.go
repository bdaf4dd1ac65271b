package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nftmarket/config"
	"nftmarket/core"
	"nftmarket/core/assets"
	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/indexer"
	"nftmarket/observability/logging"
	"nftmarket/storage"
)

const (
	testSecret = "rpc-test-secret"
	flowToken  = "A.0ae53cb6e3f42a79.FlowToken.Vault"
	exampleNFT = "A.f8d6e0586b0a20c7.ExampleNFT.NFT"
)

var (
	admin   = types.ModuleAddress("test:admin")
	alice   = types.ModuleAddress("test:alice")
	bob     = types.ModuleAddress("test:bob")
	creator = types.ModuleAddress("test:creator")
)

type testEnv struct {
	t       *testing.T
	handler http.Handler
	now     int64
	idx     *indexer.Indexer
}

func newTestEnv(t *testing.T, cfg ServerConfig) *testEnv {
	t.Helper()
	idx, err := indexer.Open("", logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	env := &testEnv{t: t, now: 1_700_000_000, idx: idx}
	market, err := core.NewMarket(storage.NewMemDB(), core.MarketConfig{
		Admin:   admin,
		Emitter: events.Multi{idx},
		Clock:   func() time.Time { return time.Unix(env.now, 0) },
		Logger:  logging.Discard(),
	})
	require.NoError(t, err)
	_, err = market.ApplyGenesis(&config.Genesis{
		Assets:           []config.GenesisAsset{{ID: flowToken}},
		CollectibleTypes: []config.GenesisCollectibleType{{ID: exampleNFT}},
		Accounts: []config.GenesisAccount{
			{Address: alice.String(), Assets: []string{flowToken}, CollectibleTypes: []string{exampleNFT}},
			{Address: bob.String(), Assets: []string{flowToken}, CollectibleTypes: []string{exampleNFT}, Balances: map[string]string{flowToken: "50"}},
			{Address: creator.String(), Assets: []string{flowToken}},
		},
		Collectibles: []config.GenesisCollectible{{
			Type:    exampleNFT,
			ID:      1,
			Owner:   alice.String(),
			Royalty: &config.GenesisRoyalty{Creators: []string{creator.String()}, CreatorCut: "0.05"},
		}},
	})
	require.NoError(t, err)

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = testSecret
	}
	env.handler = NewServer(market, idx, cfg, logging.Discard()).Handler()
	return env
}

func (e *testEnv) token(caller types.Address) string {
	e.t.Helper()
	tok, err := IssueToken(testSecret, caller, time.Hour, time.Now())
	require.NoError(e.t, err)
	return tok
}

type rawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func (e *testEnv) post(body string, token string) (int, rawResponse) {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	var resp rawResponse
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func (e *testEnv) call(method string, params interface{}, token string) (int, rawResponse) {
	e.t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  []interface{}{params},
	})
	require.NoError(e.t, err)
	return e.post(string(payload), token)
}

func (e *testEnv) mustCall(method string, params interface{}, token string, out interface{}) {
	e.t.Helper()
	status, resp := e.call(method, params, token)
	require.Equal(e.t, http.StatusOK, status, "%s failed: %+v", method, resp.Error)
	require.Nil(e.t, resp.Error)
	if out != nil {
		require.NoError(e.t, json.Unmarshal(resp.Result, out))
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})
	const id = "7f1c2b8e-5a50-4d6f-9a6e-3f6c1d2e4b5a"
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"registry_get"}`))
	req.Header.Set(requestIDHeader, id)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, id, rec.Header().Get(requestIDHeader))
}

func TestRegistryGet(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})
	var reg RegistryView
	env.mustCall("registry_get", nil, "", &reg)
	require.Greater(t, reg.Version, uint64(0))
	require.Equal(t, flowToken, reg.Canonical)
	require.Len(t, reg.Assets, 1)
	require.Len(t, reg.CollectibleTypes, 1)
}

func TestMutatingMethodsRequireToken(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})
	status, resp := env.call("auction_settle", map[string]interface{}{"type": exampleNFT, "tokenId": 1}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	other, err := IssueToken("another-secret", alice, time.Hour, time.Now())
	require.NoError(t, err)
	status, resp = env.call("auction_settle", map[string]interface{}{"type": exampleNFT, "tokenId": 1}, other)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "invalid token", resp.Error.Message)
}

func TestAuctionFlowOverRPC(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})
	aliceTok, bobTok := env.token(alice), env.token(bob)

	var created AuctionView
	env.mustCall("auction_createDefault", map[string]interface{}{
		"type":         exampleNFT,
		"tokenId":      1,
		"biddingAsset": flowToken,
		"minPrice":     "2",
		"buyNowPrice":  "10",
	}, aliceTok, &created)
	require.Equal(t, "active", created.Status)
	require.Equal(t, "auction", created.Kind)
	require.Equal(t, alice, created.Seller)

	var bid AuctionView
	env.mustCall("auction_bid", map[string]interface{}{
		"type": exampleNFT, "tokenId": 1, "asset": flowToken, "amount": "4",
	}, bobTok, &bid)
	require.Equal(t, "4.00000000", bid.HighestBid)
	require.Equal(t, bob, bid.HighestBidder)
	require.Equal(t, bob, bid.Recipient)

	status, resp := env.call("auction_settle", map[string]interface{}{"type": exampleNFT, "tokenId": 1}, bobTok)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, codeTiming, resp.Error.Code)
	require.Equal(t, map[string]interface{}{"kind": "timing"}, resp.Error.Data)

	env.now += 86400
	var settled AuctionView
	env.mustCall("auction_settle", map[string]interface{}{"type": exampleNFT, "tokenId": 1}, bobTok, &settled)
	require.Equal(t, "settled", settled.Status)

	var bal amountView
	env.mustCall("account_balance", map[string]interface{}{"account": alice.String(), "asset": flowToken}, "", &bal)
	require.Equal(t, "3.80000000", bal.Amount)

	var owned ClaimedCollectiblesView
	env.mustCall("account_collectibles", map[string]interface{}{"account": bob.String(), "type": exampleNFT}, "", &owned)
	require.Equal(t, []uint64{1}, owned.TokenIDs)

	var list []AuctionView
	env.mustCall("auction_list", map[string]interface{}{"status": "settled"}, "", &list)
	require.Len(t, list, 1)

	var royalties RoyaltyView
	env.mustCall("royalty_get", map[string]interface{}{"owner": bob.String(), "type": exampleNFT, "tokenId": 1}, "", &royalties)
	require.Len(t, royalties.LineItems, 1)
	require.Equal(t, creator, royalties.LineItems[0].Payee)
	require.Equal(t, "0.05000000", royalties.Config.CreatorCut)

	var entries []indexer.Entry
	env.mustCall("events_list", map[string]interface{}{"type": "auction.settled"}, "", &entries)
	require.Len(t, entries, 1)
}

func TestClaimPayoutOverRPC(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})
	aliceTok, bobTok := env.token(alice), env.token(bob)

	env.mustCall("account_unlink", map[string]interface{}{"path": assets.GenericReceiverPath}, aliceTok, nil)
	env.mustCall("account_unlink", map[string]interface{}{"path": "/public/flowTokenReceiver"}, aliceTok, nil)
	env.mustCall("auction_createSale", map[string]interface{}{
		"type": exampleNFT, "tokenId": 1, "biddingAsset": flowToken, "buyNowPrice": "5",
	}, aliceTok, nil)
	env.mustCall("auction_bid", map[string]interface{}{
		"type": exampleNFT, "tokenId": 1, "asset": flowToken, "amount": "5",
	}, bobTok, nil)

	var pending PendingView
	env.mustCall("escrow_pending", map[string]interface{}{"account": alice.String(), "asset": flowToken}, "", &pending)
	require.Equal(t, "4.75000000", pending.Payout)

	status, resp := env.call("escrow_claimPayout", map[string]interface{}{"asset": flowToken}, aliceTok)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation", resp.Error.Data.(map[string]interface{})["kind"])

	env.mustCall("account_link", map[string]interface{}{"path": assets.GenericReceiverPath}, aliceTok, nil)
	var claimed amountView
	env.mustCall("escrow_claimPayout", map[string]interface{}{"asset": flowToken}, aliceTok, &claimed)
	require.Equal(t, "4.75000000", claimed.Amount)

	env.mustCall("escrow_pending", map[string]interface{}{"account": alice.String(), "asset": flowToken}, "", &pending)
	require.Equal(t, "0.00000000", pending.Payout)
}

func TestAdminMethodsCheckCaller(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})
	status, resp := env.call("admin_fund", map[string]interface{}{
		"to": bob.String(), "asset": flowToken, "amount": "5",
	}, env.token(bob))
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	var reg RegistryView
	env.mustCall("admin_addAsset", map[string]interface{}{"id": "A.e03daebed8ca0615.FUSD.Vault"}, env.token(admin), &reg)
	require.Len(t, reg.Assets, 2)
}

func TestRequestErrors(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	status, resp := env.post(`{"jsonrpc":"2.0","id":1,"method":`, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, codeParseError, resp.Error.Code)

	status, resp = env.call("auction_explode", nil, "")
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)

	status, resp = env.post(`{"jsonrpc":"1.0","id":1,"method":"registry_get"}`, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, codeInvalidRequest, resp.Error.Code)

	status, resp = env.call("auction_get", map[string]interface{}{"type": exampleNFT, "tokenId": 1, "colour": "red"}, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, codeInvalidParams, resp.Error.Code)

	status, resp = env.call("auction_get", map[string]interface{}{"type": exampleNFT, "tokenId": 9}, "")
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, codeNotFound, resp.Error.Code)

	status, resp = env.call("auction_list", map[string]interface{}{"status": "paused"}, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestBodyLimit(t *testing.T) {
	env := newTestEnv(t, ServerConfig{MaxBodyBytes: 32})
	body := bytes.Repeat([]byte(" "), 64)
	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, ServerConfig{RateLimitPerMinute: 1, Burst: 1})
	status, _ := env.call("registry_get", nil, "")
	require.Equal(t, http.StatusOK, status)
	status, resp := env.call("registry_get", nil, "")
	require.Equal(t, http.StatusTooManyRequests, status)
	require.Equal(t, codeRateLimited, resp.Error.Code)
}
