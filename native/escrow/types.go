package escrow

import (
	"github.com/shopspring/decimal"

	"nftmarket/core/types"
)

// ModuleName names the escrow module; its vault account holds every escrowed
// token and collectible.
const ModuleName = "escrow"

// VaultAddress is the account holding escrowed value.
var VaultAddress = types.ModuleAddress(ModuleName)

// Delivery reports where a push ended up.
type Delivery struct {
	Recipient types.Address
	Asset     string
	Amount    decimal.Decimal
	Path      string
	Escrowed  bool
}

// CollectibleDelivery reports where a collectible push ended up.
type CollectibleDelivery struct {
	Recipient types.Address
	Type      string
	TokenID   uint64
	Path      string
	Escrowed  bool
}
