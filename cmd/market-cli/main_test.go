package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nftmarket/config"
	"nftmarket/core/types"
	"nftmarket/rpc"
)

type recordedCall struct {
	method      string
	params      map[string]interface{}
	requireAuth bool
}

func stubRPC(t *testing.T, result string, rpcErr *rpcError) *[]recordedCall {
	t.Helper()
	calls := &[]recordedCall{}
	original := rpcCall
	rpcCall = func(method string, params interface{}, requireAuth bool) (json.RawMessage, *rpcError, error) {
		call := recordedCall{method: method, requireAuth: requireAuth}
		if params != nil {
			raw, err := json.Marshal(params)
			if err != nil {
				t.Fatalf("marshal params: %v", err)
			}
			if err := json.Unmarshal(raw, &call.params); err != nil {
				t.Fatalf("unmarshal params: %v", err)
			}
		}
		*calls = append(*calls, call)
		return json.RawMessage(result), rpcErr, nil
	}
	t.Cleanup(func() { rpcCall = original })
	return calls
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

var (
	seller = types.ModuleAddress("cli:seller")
	buyer  = types.ModuleAddress("cli:buyer")
)

func TestArgValidationSkipsRPC(t *testing.T) {
	calls := stubRPC(t, `{}`, nil)
	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "no command", args: nil, want: "Usage: market-cli"},
		{name: "unknown", args: []string{"mint-money"}, want: "Unknown command: mint-money"},
		{name: "missing type", args: []string{"auction", "settle", "--id", "1"}, want: "--type is required"},
		{name: "bad id", args: []string{"auction", "get", "--type", "T", "--id", "x"}, want: "--id must be an unsigned integer"},
		{name: "bad amount", args: []string{"auction", "bid", "--type", "T", "--id", "1", "--asset", "F", "--amount", "lots"}, want: "--amount must be a decimal amount"},
		{name: "bad fee", args: []string{"auction", "create-sale", "--type", "T", "--id", "1", "--fee", "nobody"}, want: "fee must be address=fraction"},
		{name: "half custom create", args: []string{"auction", "create", "--type", "T", "--id", "1", "--asset", "F", "--min-price", "1", "--buy-now", "2", "--period", "60"}, want: "--period and --increase must be given together"},
		{name: "pending needs filter", args: []string{"escrow", "pending", "--account", seller.String()}, want: "--asset or --type is required"},
		{name: "missing rpc value", args: []string{"--rpc"}, want: "missing value for --rpc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := runCLI(tc.args...)
			if code != 1 {
				t.Fatalf("exit code = %d, want 1", code)
			}
			if !strings.Contains(stderr, tc.want) {
				t.Fatalf("stderr %q does not contain %q", stderr, tc.want)
			}
		})
	}
	if len(*calls) != 0 {
		t.Fatalf("unexpected RPC calls: %+v", *calls)
	}
}

func TestAuctionCreateSelectsMethod(t *testing.T) {
	calls := stubRPC(t, `{"status":"active"}`, nil)

	code, stdout, stderr := runCLI("auction", "create", "--type", "T", "--id", "7", "--asset", "F",
		"--min-price", "2", "--buy-now", "10", "--fee", seller.String()+"=0.05")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, `"status": "active"`) {
		t.Fatalf("stdout not pretty-printed: %q", stdout)
	}

	code, _, stderr = runCLI("auction", "create", "--type", "T", "--id", "7", "--asset", "F",
		"--min-price", "2", "--buy-now", "10", "--period", "3600", "--increase", "0.05")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}

	if len(*calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(*calls))
	}
	first, second := (*calls)[0], (*calls)[1]
	if first.method != "auction_createDefault" || !first.requireAuth {
		t.Fatalf("first call = %+v", first)
	}
	if got := first.params["feePercentages"].([]interface{})[0]; got != "0.05" {
		t.Fatalf("fee fraction = %v", got)
	}
	if second.method != "auction_create" || second.params["bidPeriodSeconds"] != float64(3600) {
		t.Fatalf("second call = %+v", second)
	}
}

func TestBidWithRecipientUsesCustomBid(t *testing.T) {
	calls := stubRPC(t, `{}`, nil)
	code, _, stderr := runCLI("auction", "bid", "--type", "T", "--id", "1", "--asset", "F", "--amount", "4", "--recipient", buyer.String())
	if code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	if (*calls)[0].method != "auction_customBid" {
		t.Fatalf("method = %s", (*calls)[0].method)
	}
	if (*calls)[0].params["recipient"] != buyer.String() {
		t.Fatalf("recipient = %v", (*calls)[0].params["recipient"])
	}
}

func TestRPCErrorIsReported(t *testing.T) {
	stubRPC(t, `null`, &rpcError{Code: -32010, Message: "auction engine: auction has not ended", Data: json.RawMessage(`{"kind":"timing"}`)})
	code, _, stderr := runCLI("auction", "settle", "--type", "T", "--id", "1")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "code -32010") || !strings.Contains(stderr, `"kind":"timing"`) {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestCallRPCSendsBearerToken(t *testing.T) {
	var gotAuth, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Method string `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotMethod = req.Method
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"amount":"4.75000000"}}`))
	}))
	defer srv.Close()
	originalEndpoint, originalToken := rpcEndpoint, rpcAuthToken
	defer func() { rpcEndpoint, rpcAuthToken = originalEndpoint, originalToken }()

	code, stdout, stderr := runCLI("--rpc", srv.URL, "--token", "abc", "escrow", "claim-payout", "--asset", "F")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	if gotAuth != "Bearer abc" || gotMethod != "escrow_claimPayout" {
		t.Fatalf("auth %q method %q", gotAuth, gotMethod)
	}
	if !strings.Contains(stdout, "4.75000000") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestMutatingCommandRequiresToken(t *testing.T) {
	original := rpcAuthToken
	rpcAuthToken = ""
	defer func() { rpcAuthToken = original }()

	code, _, stderr := runCLI("escrow", "claim-nfts", "--type", "T")
	if code != 1 || !strings.Contains(stderr, "requires MARKET_RPC_TOKEN") {
		t.Fatalf("code %d stderr %q", code, stderr)
	}
}

func TestDialErrorIncludesEndpoint(t *testing.T) {
	originalEndpoint := rpcEndpoint
	rpcEndpoint = "http://test.invalid/rpc"
	defer func() { rpcEndpoint = originalEndpoint }()

	originalClient := http.DefaultClient
	http.DefaultClient = &http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused (test stub)")
	})}
	defer func() { http.DefaultClient = originalClient }()

	code, _, stderr := runCLI("registry")
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stderr, "POST http://test.invalid/rpc") || !strings.Contains(stderr, "connection refused (test stub)") {
		t.Fatalf("stderr = %q", stderr)
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestTokenCommandSignsForAdminKey(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("create config: %v", err)
	}

	now := time.Now()
	original := tokenNow
	tokenNow = func() time.Time { return now }
	defer func() { tokenNow = original }()

	code, stdout, stderr := runCLI("token", "--config", configPath, "--ttl", "1h")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	token := strings.TrimSpace(stdout)

	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	caller, rpcErr := rpc.NewAuthenticator(cfg.RPC.JWTSecret).Caller(req)
	if rpcErr != nil {
		t.Fatalf("token rejected: %v", rpcErr)
	}
	if caller.String() != cfg.Admin {
		t.Fatalf("caller = %s, want admin %s", caller, cfg.Admin)
	}

	if _, err := os.Stat(cfg.AdminKeyFile); err != nil {
		t.Fatalf("admin key missing: %v", err)
	}
}

func TestAdminMintBuildsRoyaltyConfig(t *testing.T) {
	calls := stubRPC(t, `{"ok":true}`, nil)
	code, _, stderr := runCLI("admin", "mint", "--type", "T", "--id", "3", "--owner", seller.String(),
		"--creators", buyer.String()+", "+seller.String(), "--creator-cut", "0.05")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	call := (*calls)[0]
	if call.method != "admin_mint" || !call.requireAuth {
		t.Fatalf("call = %+v", call)
	}
	royalty, ok := call.params["royalty"].(map[string]interface{})
	if !ok {
		t.Fatalf("royalty missing: %+v", call.params)
	}
	if creators := royalty["creators"].([]interface{}); len(creators) != 2 {
		t.Fatalf("creators = %v", creators)
	}
	if royalty["creatorCut"] != "0.05" {
		t.Fatalf("creatorCut = %v", royalty["creatorCut"])
	}
	if _, ok := royalty["platform"]; ok {
		t.Fatalf("platform should be omitted: %v", royalty)
	}
}

func TestAccountSetupSplitsLists(t *testing.T) {
	calls := stubRPC(t, `{"ok":true}`, nil)
	code, _, stderr := runCLI("account", "setup", "--assets", "A, B,", "--types", "N")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr)
	}
	assets := (*calls)[0].params["assets"].([]interface{})
	if len(assets) != 2 || assets[1] != "B" {
		t.Fatalf("assets = %v", assets)
	}
}
