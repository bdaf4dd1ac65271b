package collectibles

import (
	stderrors "errors"
	"reflect"
	"testing"

	"nftmarket/core/errors"
	"nftmarket/core/types"
)

type tokenKey struct {
	typ string
	id  uint64
}

type collectionKey struct {
	owner types.Address
	typ   string
}

type mockState struct {
	tokens      map[tokenKey]*Token
	collections map[collectionKey]*Collection
}

func newMockState() *mockState {
	return &mockState{
		tokens:      make(map[tokenKey]*Token),
		collections: make(map[collectionKey]*Collection),
	}
}

func (m *mockState) TokenGet(typ string, id uint64) (*Token, bool, error) {
	tok, ok := m.tokens[tokenKey{typ, id}]
	if !ok {
		return nil, false, nil
	}
	clone := *tok
	return &clone, true, nil
}

func (m *mockState) TokenPut(tok *Token) error {
	clone := *tok
	m.tokens[tokenKey{tok.Type, tok.ID}] = &clone
	return nil
}

func (m *mockState) CollectionGet(owner types.Address, typ string) (*Collection, bool, error) {
	c, ok := m.collections[collectionKey{owner, typ}]
	if !ok {
		return nil, false, nil
	}
	return c.Clone(), true, nil
}

func (m *mockState) CollectionPut(c *Collection) error {
	m.collections[collectionKey{c.Owner, c.Type}] = c.Clone()
	return nil
}

type staticTypes map[string]bool

func (s staticTypes) IsCollectibleType(id string) bool { return s[id] }

const artwork = "A.01cf0e2f2f715450.AsyncArtwork.NFT"

var (
	admin = types.ModuleAddress("admin")
	alice = types.ModuleAddress("alice")
	bob   = types.ModuleAddress("bob")
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine()
	e.SetState(newMockState())
	e.SetRegistry(staticTypes{artwork: true})
	e.SetAdmin(admin)
	return e
}

func TestMintRequiresCollection(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Mint(admin, alice, artwork, 1); !stderrors.Is(err, ErrNoCollection) {
		t.Fatalf("expected ErrNoCollection, got %v", err)
	}
	if err := e.SetupCollection(alice, artwork); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := e.Mint(admin, alice, artwork, 1); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := e.Mint(admin, alice, artwork, 1); !stderrors.Is(err, errors.ErrConflict) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	if err := e.Mint(alice, alice, artwork, 2); !stderrors.Is(err, errors.ErrUnauthorized) {
		t.Fatalf("expected admin gate, got %v", err)
	}
}

func TestTransferMovesCustody(t *testing.T) {
	e := newTestEngine(t)
	_ = e.SetupCollection(alice, artwork)
	_ = e.SetupCollection(bob, artwork)
	_ = e.Mint(admin, alice, artwork, 3)
	_ = e.Mint(admin, alice, artwork, 1)
	if err := e.Transfer(alice, bob, artwork, 3); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if owns, _ := e.Owns(bob, artwork, 3); !owns {
		t.Fatalf("bob should own token 3")
	}
	aliceTokens, _ := e.Tokens(alice, artwork)
	bobTokens, _ := e.Tokens(bob, artwork)
	if !reflect.DeepEqual(aliceTokens, []uint64{1}) || !reflect.DeepEqual(bobTokens, []uint64{3}) {
		t.Fatalf("unexpected holdings alice=%v bob=%v", aliceTokens, bobTokens)
	}
	if err := e.Transfer(alice, bob, artwork, 3); !stderrors.Is(err, errNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
}

func TestTransferWithoutRecipientCollection(t *testing.T) {
	e := newTestEngine(t)
	_ = e.SetupCollection(alice, artwork)
	_ = e.Mint(admin, alice, artwork, 1)
	if err := e.Transfer(alice, bob, artwork, 1); !stderrors.Is(err, ErrNoCollection) {
		t.Fatalf("expected ErrNoCollection, got %v", err)
	}
	if owns, _ := e.Owns(alice, artwork, 1); !owns {
		t.Fatalf("failed transfer moved custody")
	}
}

func TestOwnsUnknownToken(t *testing.T) {
	e := newTestEngine(t)
	owns, err := e.Owns(alice, artwork, 99)
	if err != nil || owns {
		t.Fatalf("unknown token should be unowned without error: %v %v", owns, err)
	}
	if err := e.SetupCollection(alice, "A.0.Unknown.NFT"); !stderrors.Is(err, errUnknownType) {
		t.Fatalf("expected unknown type, got %v", err)
	}
}
