package assets

import (
	stderrors "errors"
	"testing"

	"nftmarket/core/errors"
	"nftmarket/core/events"
	"nftmarket/core/types"
)

type mockState struct {
	reg *Registry
}

func (m *mockState) RegistryGet() (*Registry, error) { return m.reg.Clone(), nil }

func (m *mockState) RegistryPut(r *Registry) error {
	m.reg = r.Clone()
	return nil
}

const (
	flowToken = "A.0ae53cb6e3f42a79.FlowToken.Vault"
	fusd      = "A.f8d6e0586b0a20c7.FUSD.Vault"
	artwork   = "A.01cf0e2f2f715450.AsyncArtwork.NFT"
)

func newTestEngine(t *testing.T) (*Engine, types.Address, *events.Buffer) {
	t.Helper()
	admin := types.ModuleAddress("test-admin")
	buf := events.NewBuffer()
	e := NewEngine()
	e.SetState(&mockState{})
	e.SetAdmin(admin)
	e.SetEmitter(buf)
	return e, admin, buf
}

func TestAddAssetSetsCanonicalAndVersion(t *testing.T) {
	e, admin, buf := newTestEngine(t)
	reg, err := e.AddAsset(admin, AssetType{ID: flowToken})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if reg.Version != 1 || reg.Canonical != flowToken {
		t.Fatalf("unexpected registry %+v", reg)
	}
	asset, ok := e.Asset(flowToken)
	if !ok || asset.ReceiverPath != "/public/flowTokenReceiver" {
		t.Fatalf("default receiver path not applied: %+v", asset)
	}
	reg, err = e.AddAsset(admin, AssetType{ID: fusd, ReceiverPath: "/public/fusdReceiver"})
	if err != nil {
		t.Fatalf("add fusd: %v", err)
	}
	if reg.Version != 2 || reg.Canonical != flowToken {
		t.Fatalf("canonical must not move: %+v", reg)
	}
	if !e.IsSupported(fusd) || e.IsSupported("A.0.Unknown.Vault") {
		t.Fatalf("support lookup wrong")
	}
	if buf.Len() != 2 {
		t.Fatalf("expected two events, got %d", buf.Len())
	}
}

func TestAdminGate(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.AddAsset(types.ModuleAddress("mallory"), AssetType{ID: flowToken})
	if !stderrors.Is(err, errors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestDuplicateAndRemove(t *testing.T) {
	e, admin, _ := newTestEngine(t)
	if _, err := e.AddAsset(admin, AssetType{ID: flowToken}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := e.AddAsset(admin, AssetType{ID: flowToken}); !stderrors.Is(err, errors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := e.RemoveAsset(admin, flowToken); !stderrors.Is(err, errCanonicalRequired) {
		t.Fatalf("canonical removal should fail, got %v", err)
	}
	if _, err := e.AddAsset(admin, AssetType{ID: fusd}); err != nil {
		t.Fatalf("add fusd: %v", err)
	}
	reg, err := e.RemoveAsset(admin, fusd)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if reg.Version != 3 || e.IsSupported(fusd) {
		t.Fatalf("remove did not apply: %+v", reg)
	}
	if _, err := e.RemoveAsset(admin, fusd); !stderrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetCanonical(t *testing.T) {
	e, admin, _ := newTestEngine(t)
	if _, err := e.SetCanonical(admin, fusd); !stderrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, _ = e.AddAsset(admin, AssetType{ID: flowToken})
	_, _ = e.AddAsset(admin, AssetType{ID: fusd})
	if _, err := e.SetCanonical(admin, fusd); err != nil {
		t.Fatalf("set canonical: %v", err)
	}
	if e.Canonical() != fusd {
		t.Fatalf("canonical not updated")
	}
}

func TestCollectibleTypes(t *testing.T) {
	e, admin, _ := newTestEngine(t)
	reg, err := e.AddCollectibleType(admin, CollectibleType{ID: artwork})
	if err != nil {
		t.Fatalf("add type: %v", err)
	}
	ct, ok := reg.CollectibleType(artwork)
	if !ok || ct.CollectionPath != "/public/AsyncArtworkCollection" {
		t.Fatalf("unexpected collectible type %+v", ct)
	}
	if _, err := e.AddCollectibleType(admin, CollectibleType{ID: artwork}); !stderrors.Is(err, errors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := e.AddCollectibleType(admin, CollectibleType{ID: " "}); !stderrors.Is(err, errors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeRejectsReservedPath(t *testing.T) {
	if _, err := SanitizeAssetType(AssetType{ID: fusd, ReceiverPath: GenericReceiverPath}); err == nil {
		t.Fatalf("generic path must be reserved")
	}
	if _, err := SanitizeAssetType(AssetType{ID: fusd, ReceiverPath: "/storage/x"}); err == nil {
		t.Fatalf("non-public path accepted")
	}
}

type usageFunc func(asset string) (bool, error)

func (f usageFunc) AssetInUse(asset string) (bool, error) { return f(asset) }

func TestRemoveAssetConsultsUsageCheckers(t *testing.T) {
	e, admin, _ := newTestEngine(t)
	if _, err := e.AddAsset(admin, AssetType{ID: flowToken}); err != nil {
		t.Fatalf("add flow: %v", err)
	}
	if _, err := e.AddAsset(admin, AssetType{ID: fusd}); err != nil {
		t.Fatalf("add fusd: %v", err)
	}
	held := true
	e.AddUsageChecker(usageFunc(func(asset string) (bool, error) { return held && asset == fusd, nil }))

	if _, err := e.RemoveAsset(admin, fusd); !stderrors.Is(err, errors.ErrConflict) {
		t.Fatalf("expected conflict while held, got %v", err)
	}
	if !e.IsSupported(fusd) {
		t.Fatalf("refused removal must keep the asset")
	}
	held = false
	if _, err := e.RemoveAsset(admin, fusd); err != nil {
		t.Fatalf("remove after release: %v", err)
	}
}
