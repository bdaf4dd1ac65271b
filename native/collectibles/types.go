package collectibles

import (
	"sort"

	"nftmarket/core/types"
)

// Token records the current owner of one collectible.
type Token struct {
	Type  string
	ID    uint64
	Owner types.Address
}

// Collection is an account's holding area for one collectible type. Deposits
// of that type fail when the account has no collection.
type Collection struct {
	Owner types.Address
	Type  string
	IDs   []uint64
}

func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	clone := *c
	clone.IDs = append([]uint64(nil), c.IDs...)
	return &clone
}

func (c *Collection) add(id uint64) {
	for _, existing := range c.IDs {
		if existing == id {
			return
		}
	}
	c.IDs = append(c.IDs, id)
	sort.Slice(c.IDs, func(i, j int) bool { return c.IDs[i] < c.IDs[j] })
}

func (c *Collection) remove(id uint64) bool {
	for i, existing := range c.IDs {
		if existing == id {
			c.IDs = append(c.IDs[:i], c.IDs[i+1:]...)
			return true
		}
	}
	return false
}
