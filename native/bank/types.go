package bank

import (
	"github.com/shopspring/decimal"

	"nftmarket/core/types"
)

// Vault holds one account's balance of one fungible asset type. Deposits to an
// account without a vault for the asset fail.
type Vault struct {
	Owner   types.Address
	Asset   string
	Balance decimal.Decimal
}

func (v *Vault) Clone() *Vault {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}
