package types

import (
	"fmt"
	"strconv"
	"strings"
)

// CollectibleID names a single non-fungible token: its collection type
// identifier (for example "A.01cf0e2f2f715450.AsyncArtwork.NFT") and the token
// id inside that collection.
type CollectibleID struct {
	Type string
	ID   uint64
}

func (c CollectibleID) String() string {
	return c.Type + "#" + strconv.FormatUint(c.ID, 10)
}

// ParseCollectibleID parses the "<type>#<id>" form produced by String.
func ParseCollectibleID(s string) (CollectibleID, error) {
	idx := strings.LastIndex(s, "#")
	if idx <= 0 || idx == len(s)-1 {
		return CollectibleID{}, fmt.Errorf("collectible id %q: expected <type>#<id>", s)
	}
	id, err := strconv.ParseUint(s[idx+1:], 10, 64)
	if err != nil {
		return CollectibleID{}, fmt.Errorf("collectible id %q: %w", s, err)
	}
	return CollectibleID{Type: strings.TrimSpace(s[:idx]), ID: id}, nil
}

// ContractName extracts the contract segment from a qualified type identifier
// such as "A.0ae53cb6e3f42a79.FlowToken.Vault". Identifiers without the
// qualified shape are returned unchanged.
func ContractName(typeID string) string {
	parts := strings.Split(strings.TrimSpace(typeID), ".")
	if len(parts) == 4 && parts[0] == "A" {
		return parts[2]
	}
	return strings.TrimSpace(typeID)
}
