package state

import (
	"strconv"

	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
	"nftmarket/core/assets"
	"nftmarket/core/types"
	"nftmarket/native/bank"
	"nftmarket/native/collectibles"
)

func idBytes(id uint64) []byte { return []byte(strconv.FormatUint(id, 10)) }

// RegistryGet returns the stored registry or an empty one.
func (m *Manager) RegistryGet() (*assets.Registry, error) {
	reg := new(assets.Registry)
	if _, err := m.get(registryKey, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (m *Manager) RegistryPut(reg *assets.Registry) error {
	return m.put(registryKey, reg)
}

// ClockGet returns the last ledger timestamp committed, zero when unset.
func (m *Manager) ClockGet() (int64, error) {
	var ts uint64
	if _, err := m.get(clockKey, &ts); err != nil {
		return 0, err
	}
	return int64(ts), nil
}

func (m *Manager) ClockPut(ts int64) error {
	if ts < 0 {
		ts = 0
	}
	return m.put(clockKey, uint64(ts))
}

type storedVault struct {
	Owner   types.Address
	Asset   string
	Balance string
}

func vaultKey(owner types.Address, asset string) []byte {
	return compositeKey(vaultPrefix, owner[:], []byte(asset))
}

func (m *Manager) VaultGet(owner types.Address, asset string) (*bank.Vault, bool, error) {
	var stored storedVault
	ok, err := m.get(vaultKey(owner, asset), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	balance, err := decimal.NewFromString(stored.Balance)
	if err != nil {
		return nil, false, err
	}
	return &bank.Vault{Owner: stored.Owner, Asset: stored.Asset, Balance: balance}, true, nil
}

func (m *Manager) VaultPut(v *bank.Vault) error {
	return m.put(vaultKey(v.Owner, v.Asset), storedVault{
		Owner:   v.Owner,
		Asset:   v.Asset,
		Balance: amount.Format(v.Balance),
	})
}

func tokenKey(collectibleType string, id uint64) []byte {
	return compositeKey(tokenPrefix, []byte(collectibleType), idBytes(id))
}

func (m *Manager) TokenGet(collectibleType string, id uint64) (*collectibles.Token, bool, error) {
	tok := new(collectibles.Token)
	ok, err := m.get(tokenKey(collectibleType, id), tok)
	if err != nil || !ok {
		return nil, false, err
	}
	return tok, true, nil
}

func (m *Manager) TokenPut(tok *collectibles.Token) error {
	return m.put(tokenKey(tok.Type, tok.ID), tok)
}

func collectionKey(owner types.Address, collectibleType string) []byte {
	return compositeKey(collectionPrefix, owner[:], []byte(collectibleType))
}

func (m *Manager) CollectionGet(owner types.Address, collectibleType string) (*collectibles.Collection, bool, error) {
	c := new(collectibles.Collection)
	ok, err := m.get(collectionKey(owner, collectibleType), c)
	if err != nil || !ok {
		return nil, false, err
	}
	return c, true, nil
}

func (m *Manager) CollectionPut(c *collectibles.Collection) error {
	return m.put(collectionKey(c.Owner, c.Type), c)
}

func receiverLinkKey(owner types.Address, path string) []byte {
	return compositeKey(receiverLinkPrefix, owner[:], []byte(path))
}

func (m *Manager) ReceiverLinked(owner types.Address, path string) (bool, error) {
	var linked bool
	if _, err := m.get(receiverLinkKey(owner, path), &linked); err != nil {
		return false, err
	}
	return linked, nil
}

func (m *Manager) ReceiverLinkPut(owner types.Address, path string, linked bool) error {
	if !linked {
		return m.remove(receiverLinkKey(owner, path))
	}
	return m.put(receiverLinkKey(owner, path), true)
}
