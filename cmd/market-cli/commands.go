package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"nftmarket/config"
	"nftmarket/core/types"
	"nftmarket/rpc"
)

var tokenNow = time.Now

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// collectibleFlags registers the --type/--id pair shared by most commands.
type collectibleFlags struct {
	typ string
	id  string
}

func (c *collectibleFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.typ, "type", "", "collectible type identifier")
	fs.StringVar(&c.id, "id", "", "collectible token id")
}

func (c *collectibleFlags) params() (map[string]interface{}, error) {
	if strings.TrimSpace(c.typ) == "" {
		return nil, fmt.Errorf("--type is required")
	}
	if strings.TrimSpace(c.id) == "" {
		return nil, fmt.Errorf("--id is required")
	}
	id, err := strconv.ParseUint(strings.TrimSpace(c.id), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("--id must be an unsigned integer")
	}
	return map[string]interface{}{"type": strings.TrimSpace(c.typ), "tokenId": id}, nil
}

// feeFlag collects repeated --fee address=fraction pairs.
type feeFlag struct {
	recipients []string
	fractions  []string
}

func (f *feeFlag) String() string { return strings.Join(f.recipients, ",") }

func (f *feeFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("fee must be address=fraction")
	}
	if _, err := types.ParseAddress(strings.TrimSpace(parts[0])); err != nil {
		return fmt.Errorf("fee recipient: %w", err)
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(parts[1])); err != nil {
		return fmt.Errorf("fee fraction: %w", err)
	}
	f.recipients = append(f.recipients, strings.TrimSpace(parts[0]))
	f.fractions = append(f.fractions, strings.TrimSpace(parts[1]))
	return nil
}

func setAmount(params map[string]interface{}, key, flagName, value string, required bool) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return fmt.Errorf("--%s is required", flagName)
		}
		return nil
	}
	if _, err := decimal.NewFromString(value); err != nil {
		return fmt.Errorf("--%s must be a decimal amount", flagName)
	}
	params[key] = value
	return nil
}

func setAddress(params map[string]interface{}, key, flagName, value string, required bool) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return fmt.Errorf("--%s is required", flagName)
		}
		return nil
	}
	if _, err := types.ParseAddress(value); err != nil {
		return fmt.Errorf("--%s: %w", flagName, err)
	}
	params[key] = value
	return nil
}

// --- token ---

func runToken(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("token", stderr)
	var (
		configPath string
		address    string
		ttl        time.Duration
	)
	fs.StringVar(&configPath, "config", "./config.toml", "node configuration holding the JWT secret")
	fs.StringVar(&address, "address", "", "account to authenticate as (defaults to the admin key's account)")
	fs.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime; 0 issues a token without expiry")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return printError(stderr, fmt.Sprintf("load config: %v", err))
	}
	var caller types.Address
	if strings.TrimSpace(address) != "" {
		caller, err = types.ParseAddress(strings.TrimSpace(address))
		if err != nil {
			return printError(stderr, fmt.Sprintf("--address: %v", err))
		}
	} else {
		if strings.TrimSpace(cfg.AdminKeyFile) == "" {
			return printError(stderr, "--address is required when no AdminKeyFile is configured")
		}
		key, err := config.LoadAdminKey(cfg.AdminKeyFile)
		if err != nil {
			return printError(stderr, fmt.Sprintf("load admin key: %v", err))
		}
		caller = types.Address(key.AddressBytes())
	}
	token, err := rpc.IssueToken(cfg.RPC.JWTSecret, caller, ttl, tokenNow())
	if err != nil {
		return printError(stderr, err.Error())
	}
	fmt.Fprintln(stdout, token)
	return 0
}

// --- auctions ---

func runAuctionCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage())
		return 1
	}
	switch args[0] {
	case "create-sale":
		return runAuctionCreateSale(args[1:], stdout, stderr)
	case "create":
		return runAuctionCreate(args[1:], stdout, stderr)
	case "bid":
		return runAuctionBid(args[1:], stdout, stderr)
	case "settle":
		return runAuctionSimple("auction settle", "auction_settle", true, args[1:], stdout, stderr)
	case "take":
		return runAuctionSimple("auction take", "auction_takeHighestBid", true, args[1:], stdout, stderr)
	case "withdraw":
		return runAuctionSimple("auction withdraw", "auction_withdraw", true, args[1:], stdout, stderr)
	case "withdraw-bid":
		return runAuctionSimple("auction withdraw-bid", "auction_withdrawBid", true, args[1:], stdout, stderr)
	case "get":
		return runAuctionSimple("auction get", "auction_get", false, args[1:], stdout, stderr)
	case "set-buy-now":
		return runAuctionPrice("auction set-buy-now", "auction_updateBuyNowPrice", args[1:], stdout, stderr)
	case "set-min-price":
		return runAuctionPrice("auction set-min-price", "auction_updateMinimumPrice", args[1:], stdout, stderr)
	case "set-buyer":
		return runAuctionBuyer(args[1:], stdout, stderr)
	case "list":
		return runAuctionList(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown auction subcommand: %s\n", args[0])
		return 1
	}
}

func runAuctionCreateSale(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("auction create-sale", stderr)
	var (
		target collectibleFlags
		fees   feeFlag
		asset  string
		buyNow string
		buyer  string
	)
	target.register(fs)
	fs.StringVar(&asset, "asset", "", "fungible asset the sale is priced in")
	fs.StringVar(&buyNow, "buy-now", "", "fixed sale price")
	fs.StringVar(&buyer, "buyer", "", "optional whitelisted buyer")
	fs.Var(&fees, "fee", "fee recipient as address=fraction (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	params, err := target.params()
	if err != nil {
		return printError(stderr, err.Error())
	}
	if strings.TrimSpace(asset) == "" {
		return printError(stderr, "--asset is required")
	}
	params["biddingAsset"] = strings.TrimSpace(asset)
	if err := setAmount(params, "buyNowPrice", "buy-now", buyNow, true); err != nil {
		return printError(stderr, err.Error())
	}
	if err := setAddress(params, "whitelistedBuyer", "buyer", buyer, false); err != nil {
		return printError(stderr, err.Error())
	}
	applyFees(params, fees)
	return invoke(stdout, stderr, "auction_createSale", params, true)
}

func runAuctionCreate(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("auction create", stderr)
	var (
		target   collectibleFlags
		fees     feeFlag
		asset    string
		minPrice string
		buyNow   string
		period   int64
		increase string
	)
	target.register(fs)
	fs.StringVar(&asset, "asset", "", "fungible asset bids are placed in")
	fs.StringVar(&minPrice, "min-price", "", "reserve price")
	fs.StringVar(&buyNow, "buy-now", "", "buy-now price")
	fs.Int64Var(&period, "period", 0, "bid period in seconds (module default when omitted)")
	fs.StringVar(&increase, "increase", "", "minimum relative bid increase (module default when omitted)")
	fs.Var(&fees, "fee", "fee recipient as address=fraction (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	params, err := target.params()
	if err != nil {
		return printError(stderr, err.Error())
	}
	if strings.TrimSpace(asset) == "" {
		return printError(stderr, "--asset is required")
	}
	params["biddingAsset"] = strings.TrimSpace(asset)
	if err := setAmount(params, "minPrice", "min-price", minPrice, true); err != nil {
		return printError(stderr, err.Error())
	}
	if err := setAmount(params, "buyNowPrice", "buy-now", buyNow, true); err != nil {
		return printError(stderr, err.Error())
	}
	if err := setAmount(params, "bidIncrease", "increase", increase, false); err != nil {
		return printError(stderr, err.Error())
	}
	if period < 0 {
		return printError(stderr, "--period must not be negative")
	}
	applyFees(params, fees)

	method := "auction_createDefault"
	if period > 0 || strings.TrimSpace(increase) != "" {
		method = "auction_create"
		if period == 0 || strings.TrimSpace(increase) == "" {
			return printError(stderr, "--period and --increase must be given together")
		}
		params["bidPeriodSeconds"] = period
	}
	return invoke(stdout, stderr, method, params, true)
}

func applyFees(params map[string]interface{}, fees feeFlag) {
	if len(fees.recipients) == 0 {
		return
	}
	params["feeRecipients"] = fees.recipients
	params["feePercentages"] = fees.fractions
}

func runAuctionBid(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("auction bid", stderr)
	var (
		target    collectibleFlags
		asset     string
		amount    string
		recipient string
	)
	target.register(fs)
	fs.StringVar(&asset, "asset", "", "asset the bid is paid in")
	fs.StringVar(&amount, "amount", "", "bid amount")
	fs.StringVar(&recipient, "recipient", "", "optional account that receives the collectible")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	params, err := target.params()
	if err != nil {
		return printError(stderr, err.Error())
	}
	if strings.TrimSpace(asset) == "" {
		return printError(stderr, "--asset is required")
	}
	params["asset"] = strings.TrimSpace(asset)
	if err := setAmount(params, "amount", "amount", amount, true); err != nil {
		return printError(stderr, err.Error())
	}
	if err := setAddress(params, "recipient", "recipient", recipient, false); err != nil {
		return printError(stderr, err.Error())
	}
	method := "auction_bid"
	if _, ok := params["recipient"]; ok {
		method = "auction_customBid"
	}
	return invoke(stdout, stderr, method, params, true)
}

func runAuctionSimple(name, method string, requireAuth bool, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(name, stderr)
	var target collectibleFlags
	target.register(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	params, err := target.params()
	if err != nil {
		return printError(stderr, err.Error())
	}
	return invoke(stdout, stderr, method, params, requireAuth)
}

func runAuctionPrice(name, method string, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(name, stderr)
	var (
		target collectibleFlags
		price  string
	)
	target.register(fs)
	fs.StringVar(&price, "price", "", "new price")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	params, err := target.params()
	if err != nil {
		return printError(stderr, err.Error())
	}
	if err := setAmount(params, "price", "price", price, true); err != nil {
		return printError(stderr, err.Error())
	}
	return invoke(stdout, stderr, method, params, true)
}

func runAuctionBuyer(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("auction set-buyer", stderr)
	var (
		target collectibleFlags
		buyer  string
	)
	target.register(fs)
	fs.StringVar(&buyer, "buyer", "", "whitelisted buyer")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	params, err := target.params()
	if err != nil {
		return printError(stderr, err.Error())
	}
	if err := setAddress(params, "buyer", "buyer", buyer, true); err != nil {
		return printError(stderr, err.Error())
	}
	return invoke(stdout, stderr, "auction_updateWhitelistedBuyer", params, true)
}

func runAuctionList(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("auction list", stderr)
	var status string
	fs.StringVar(&status, "status", "", "filter by status (none, active, settled, withdrawn)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	return invoke(stdout, stderr, "auction_list", map[string]interface{}{"status": strings.TrimSpace(status)}, false)
}

// --- escrow ---

func runEscrowCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage())
		return 1
	}
	switch args[0] {
	case "claim-payout":
		fs := newFlagSet("escrow claim-payout", stderr)
		var asset string
		fs.StringVar(&asset, "asset", "", "asset to claim")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		if strings.TrimSpace(asset) == "" {
			return printError(stderr, "--asset is required")
		}
		return invoke(stdout, stderr, "escrow_claimPayout", map[string]interface{}{"asset": strings.TrimSpace(asset)}, true)
	case "claim-nfts":
		fs := newFlagSet("escrow claim-nfts", stderr)
		var typ string
		fs.StringVar(&typ, "type", "", "collectible type to claim")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		if strings.TrimSpace(typ) == "" {
			return printError(stderr, "--type is required")
		}
		return invoke(stdout, stderr, "escrow_claimNFTs", map[string]interface{}{"type": strings.TrimSpace(typ)}, true)
	case "pending":
		return runEscrowPending(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown escrow subcommand: %s\n", args[0])
		return 1
	}
}

func runEscrowPending(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("escrow pending", stderr)
	var account, asset, typ string
	fs.StringVar(&account, "account", "", "account to inspect")
	fs.StringVar(&asset, "asset", "", "asset of escrowed payouts")
	fs.StringVar(&typ, "type", "", "collectible type of escrowed deliveries")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	params := map[string]interface{}{}
	if err := setAddress(params, "account", "account", account, true); err != nil {
		return printError(stderr, err.Error())
	}
	if strings.TrimSpace(asset) == "" && strings.TrimSpace(typ) == "" {
		return printError(stderr, "--asset or --type is required")
	}
	params["asset"] = strings.TrimSpace(asset)
	params["type"] = strings.TrimSpace(typ)
	return invoke(stdout, stderr, "escrow_pending", params, false)
}

// --- royalties ---

func runRoyaltyCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] != "get" {
		fmt.Fprintln(stderr, usage())
		return 1
	}
	fs := newFlagSet("royalty get", stderr)
	var (
		target collectibleFlags
		owner  string
	)
	target.register(fs)
	fs.StringVar(&owner, "owner", "", "current owner, used to resolve receivers")
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}
	params, err := target.params()
	if err != nil {
		return printError(stderr, err.Error())
	}
	if err := setAddress(params, "owner", "owner", owner, false); err != nil {
		return printError(stderr, err.Error())
	}
	return invoke(stdout, stderr, "royalty_get", params, false)
}

// --- accounts ---

func runAccountCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage())
		return 1
	}
	switch args[0] {
	case "setup":
		fs := newFlagSet("account setup", stderr)
		var assetList, typeList string
		fs.StringVar(&assetList, "assets", "", "comma separated asset identifiers")
		fs.StringVar(&typeList, "types", "", "comma separated collectible types")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		return invoke(stdout, stderr, "account_setup", map[string]interface{}{
			"assets":           splitList(assetList),
			"collectibleTypes": splitList(typeList),
		}, true)
	case "link", "unlink":
		fs := newFlagSet("account "+args[0], stderr)
		var path string
		fs.StringVar(&path, "path", "", "public receiver path")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		if strings.TrimSpace(path) == "" {
			return printError(stderr, "--path is required")
		}
		return invoke(stdout, stderr, "account_"+args[0], map[string]interface{}{"path": strings.TrimSpace(path)}, true)
	case "balance":
		return runAccountQuery("account balance", "account_balance", "asset", args[1:], stdout, stderr)
	case "collectibles":
		return runAccountQuery("account collectibles", "account_collectibles", "type", args[1:], stdout, stderr)
	case "transfer":
		fs := newFlagSet("account transfer", stderr)
		var to, asset, amount string
		fs.StringVar(&to, "to", "", "recipient account")
		fs.StringVar(&asset, "asset", "", "asset identifier")
		fs.StringVar(&amount, "amount", "", "amount to send")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		params := map[string]interface{}{"asset": strings.TrimSpace(asset)}
		if err := setAddress(params, "to", "to", to, true); err != nil {
			return printError(stderr, err.Error())
		}
		if err := setAmount(params, "amount", "amount", amount, true); err != nil {
			return printError(stderr, err.Error())
		}
		return invoke(stdout, stderr, "account_transfer", params, true)
	case "transfer-collectible":
		fs := newFlagSet("account transfer-collectible", stderr)
		var (
			target collectibleFlags
			to     string
		)
		target.register(fs)
		fs.StringVar(&to, "to", "", "recipient account")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		params, err := target.params()
		if err != nil {
			return printError(stderr, err.Error())
		}
		if err := setAddress(params, "to", "to", to, true); err != nil {
			return printError(stderr, err.Error())
		}
		return invoke(stdout, stderr, "account_transferCollectible", params, true)
	default:
		fmt.Fprintf(stderr, "Unknown account subcommand: %s\n", args[0])
		return 1
	}
}

// runAccountQuery handles the read-only --account plus --asset/--type pair.
func runAccountQuery(name, method, key string, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(name, stderr)
	var account, value string
	fs.StringVar(&account, "account", "", "account to inspect")
	fs.StringVar(&value, key, "", key+" identifier")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	params := map[string]interface{}{}
	if err := setAddress(params, "account", "account", account, true); err != nil {
		return printError(stderr, err.Error())
	}
	if strings.TrimSpace(value) == "" {
		return printError(stderr, "--"+key+" is required")
	}
	params[key] = strings.TrimSpace(value)
	return invoke(stdout, stderr, method, params, false)
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// --- admin ---

func runAdminCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage())
		return 1
	}
	switch args[0] {
	case "mint":
		return runAdminMint(args[1:], stdout, stderr)
	case "fund":
		fs := newFlagSet("admin fund", stderr)
		var to, asset, amount string
		fs.StringVar(&to, "to", "", "account to fund")
		fs.StringVar(&asset, "asset", "", "asset identifier")
		fs.StringVar(&amount, "amount", "", "amount to mint")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		params := map[string]interface{}{"asset": strings.TrimSpace(asset)}
		if err := setAddress(params, "to", "to", to, true); err != nil {
			return printError(stderr, err.Error())
		}
		if err := setAmount(params, "amount", "amount", amount, true); err != nil {
			return printError(stderr, err.Error())
		}
		return invoke(stdout, stderr, "admin_fund", params, true)
	case "add-asset":
		fs := newFlagSet("admin add-asset", stderr)
		var id, path string
		fs.StringVar(&id, "id", "", "asset identifier")
		fs.StringVar(&path, "receiver-path", "", "native receiver path (derived when omitted)")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		if strings.TrimSpace(id) == "" {
			return printError(stderr, "--id is required")
		}
		return invoke(stdout, stderr, "admin_addAsset", map[string]interface{}{"id": strings.TrimSpace(id), "receiverPath": strings.TrimSpace(path)}, true)
	case "remove-asset", "set-canonical":
		fs := newFlagSet("admin "+args[0], stderr)
		var id string
		fs.StringVar(&id, "id", "", "asset identifier")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		if strings.TrimSpace(id) == "" {
			return printError(stderr, "--id is required")
		}
		method := "admin_removeAsset"
		if args[0] == "set-canonical" {
			method = "admin_setCanonical"
		}
		return invoke(stdout, stderr, method, map[string]interface{}{"id": strings.TrimSpace(id)}, true)
	case "add-collectible-type":
		fs := newFlagSet("admin add-collectible-type", stderr)
		var id, path string
		fs.StringVar(&id, "id", "", "collectible type identifier")
		fs.StringVar(&path, "collection-path", "", "collection receiver path (derived when omitted)")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		if strings.TrimSpace(id) == "" {
			return printError(stderr, "--id is required")
		}
		return invoke(stdout, stderr, "admin_addCollectibleType", map[string]interface{}{"id": strings.TrimSpace(id), "collectionPath": strings.TrimSpace(path)}, true)
	default:
		fmt.Fprintf(stderr, "Unknown admin subcommand: %s\n", args[0])
		return 1
	}
}

func runAdminMint(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("admin mint", stderr)
	var (
		target      collectibleFlags
		owner       string
		creators    string
		creatorCut  string
		platform    string
		platformCut string
	)
	target.register(fs)
	fs.StringVar(&owner, "owner", "", "account receiving the collectible")
	fs.StringVar(&creators, "creators", "", "comma separated creator accounts")
	fs.StringVar(&creatorCut, "creator-cut", "", "fraction shared by the creators")
	fs.StringVar(&platform, "platform", "", "platform account")
	fs.StringVar(&platformCut, "platform-cut", "", "fraction owed to the platform")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	params, err := target.params()
	if err != nil {
		return printError(stderr, err.Error())
	}
	if err := setAddress(params, "owner", "owner", owner, true); err != nil {
		return printError(stderr, err.Error())
	}
	creatorList := splitList(creators)
	if len(creatorList) > 0 || strings.TrimSpace(platform) != "" {
		royalty := map[string]interface{}{"creators": creatorList}
		for _, c := range creatorList {
			if _, err := types.ParseAddress(c); err != nil {
				return printError(stderr, fmt.Sprintf("--creators: %v", err))
			}
		}
		if err := setAmount(royalty, "creatorCut", "creator-cut", creatorCut, false); err != nil {
			return printError(stderr, err.Error())
		}
		if err := setAddress(royalty, "platform", "platform", platform, false); err != nil {
			return printError(stderr, err.Error())
		}
		if err := setAmount(royalty, "platformCut", "platform-cut", platformCut, false); err != nil {
			return printError(stderr, err.Error())
		}
		params["royalty"] = royalty
	}
	return invoke(stdout, stderr, "admin_mint", params, true)
}

// --- events ---

func runEventsCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] != "list" {
		fmt.Fprintln(stderr, usage())
		return 1
	}
	args = args[1:]
	fs := newFlagSet("events list", stderr)
	var (
		typ   string
		after uint64
		limit int
	)
	fs.StringVar(&typ, "type", "", "event type filter")
	fs.Uint64Var(&after, "after", 0, "only events with a larger sequence")
	fs.IntVar(&limit, "limit", 0, "maximum number of events")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if limit < 0 {
		return printError(stderr, "--limit must not be negative")
	}
	return invoke(stdout, stderr, "events_list", map[string]interface{}{
		"type":  strings.TrimSpace(typ),
		"after": after,
		"limit": limit,
	}, false)
}

// runCall invokes an arbitrary method: call <method> [json-params].
func runCall(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("call", stderr)
	var auth bool
	fs.BoolVar(&auth, "auth", false, "send the bearer token")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return printError(stderr, "method is required")
	}
	var params interface{}
	if len(rest) > 1 {
		var raw json.RawMessage
		if err := json.Unmarshal([]byte(rest[1]), &raw); err != nil {
			return printError(stderr, fmt.Sprintf("params must be JSON: %v", err))
		}
		params = raw
	}
	return invoke(stdout, stderr, rest[0], params, auth)
}
