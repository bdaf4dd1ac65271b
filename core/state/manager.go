package state

import (
	"bytes"
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"nftmarket/storage"
)

var errEmptyKey = errors.New("state: empty key")

// Manager stores every module's records on a key-value database. A record
// lives under keccak256(prefix ':' part ':' ...) and is RLP encoded.
type Manager struct {
	db storage.Database
}

func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func compositeKey(prefix []byte, parts ...[]byte) []byte {
	return bytes.Join(append([][]byte{prefix}, parts...), []byte{':'})
}

func hashed(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errEmptyKey
	}
	return ethcrypto.Keccak256(key), nil
}

func (m *Manager) put(key []byte, value interface{}) error {
	h, err := hashed(key)
	if err != nil {
		return err
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return m.db.Put(h, encoded)
}

// get decodes the record under key into out (which may be nil) and reports
// whether one was stored.
func (m *Manager) get(key []byte, out interface{}) (bool, error) {
	h, err := hashed(key)
	if err != nil {
		return false, err
	}
	data, err := m.db.Get(h)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	case len(data) == 0:
		return false, nil
	case out == nil:
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

func (m *Manager) remove(key []byte) error {
	h, err := hashed(key)
	if err != nil {
		return err
	}
	return m.db.Delete(h)
}

// appendUnique adds value to the byte-string list under key unless it is
// already present. Insertion order is kept.
func (m *Manager) appendUnique(key, value []byte) error {
	entries, err := m.list(key)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if bytes.Equal(e, value) {
			return nil
		}
	}
	return m.put(key, append(entries, bytes.Clone(value)))
}

// list never returns nil.
func (m *Manager) list(key []byte) ([][]byte, error) {
	entries := [][]byte{}
	if _, err := m.get(key, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = [][]byte{}
	}
	return entries, nil
}
