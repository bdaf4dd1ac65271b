package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressPrefix is the human-readable part of a bech32 account address.
type AddressPrefix string

const (
	// AccountPrefix marks user and module accounts on the marketplace ledger.
	AccountPrefix AddressPrefix = "nft"
)

// EncodeAddress renders 20 address bytes as a bech32 string.
func EncodeAddress(prefix AddressPrefix, b []byte) (string, error) {
	if len(b) != 20 {
		return "", fmt.Errorf("address must be 20 bytes long, got %d", len(b))
	}
	conv, err := bech32.ConvertBits(b, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(string(prefix), conv)
}

// DecodeAddress parses a bech32 string and returns its prefix and 20 bytes.
func DecodeAddress(addrStr string) (AddressPrefix, []byte, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return "", nil, fmt.Errorf("invalid bech32 string: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("error converting bits: %w", err)
	}
	if len(conv) != 20 {
		return "", nil, fmt.Errorf("address must decode to 20 bytes, got %d", len(conv))
	}
	return AddressPrefix(prefix), conv, nil
}

// ModuleAddress derives the deterministic vault account owned by a native
// module. Nobody holds a key for it.
func ModuleAddress(module string) [20]byte {
	var out [20]byte
	digest := crypto.Keccak256([]byte("module:" + module))
	copy(out[:], digest[12:])
	return out
}

// PrivateKey wraps a secp256k1 key used by clients to derive an account.
type PrivateKey struct {
	*ecdsa.PrivateKey
}

func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the byte representation of the private key.
func (k *PrivateKey) Bytes() []byte {
	return crypto.FromECDSA(k.PrivateKey)
}

// AddressBytes returns the 20-byte account derived from the public key.
func (k *PrivateKey) AddressBytes() [20]byte {
	var out [20]byte
	copy(out[:], crypto.PubkeyToAddress(k.PrivateKey.PublicKey).Bytes())
	return out
}

func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}
