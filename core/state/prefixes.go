package state

var (
	registryKey         = []byte("registry")
	clockKey            = []byte("ledger-clock")
	vaultPrefix         = []byte("vault:")
	tokenPrefix         = []byte("token:")
	collectionPrefix    = []byte("collection:")
	receiverLinkPrefix  = []byte("receiver-link:")
	royaltyConfigPrefix = []byte("royalty-config:")
	escrowPayoutPrefix  = []byte("escrow-payout:")
	escrowNFTPrefix     = []byte("escrow-nfts:")
	auctionPrefix       = []byte("auction:")
	auctionIndexKey     = []byte("auction-index")
)
