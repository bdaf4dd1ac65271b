package auction

import (
	"strconv"

	"nftmarket/core/amount"
	"nftmarket/core/types"
	"nftmarket/native/escrow"
)

const (
	EventTypeSaleCreated             = "auction.sale.created"
	EventTypeAuctionCreated          = "auction.created"
	EventTypeBidPlaced               = "auction.bid.placed"
	EventTypeBidRefunded             = "auction.bid.refunded"
	EventTypeBidWithdrawn            = "auction.bid.withdrawn"
	EventTypeSettled                 = "auction.settled"
	EventTypeBoughtNow               = "auction.bought_now"
	EventTypeHighestBidTaken         = "auction.highest_bid.taken"
	EventTypeWithdrawn               = "auction.withdrawn"
	EventTypeBuyNowPriceUpdated      = "auction.buy_now_price.updated"
	EventTypeMinimumPriceUpdated     = "auction.minimum_price.updated"
	EventTypeWhitelistedBuyerUpdated = "auction.whitelisted_buyer.updated"
	EventTypePayoutSent              = "auction.payout.sent"
)

type auctionEvent struct {
	evt *types.Event
}

func (e auctionEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e auctionEvent) Event() *types.Event { return e.evt }

func baseAttributes(a *Auction) map[string]string {
	return map[string]string{
		"type":    a.CollectibleType,
		"tokenId": strconv.FormatUint(a.TokenID, 10),
		"round":   strconv.FormatUint(a.Round, 10),
	}
}

func newCreatedEvent(a *Auction) *types.Event {
	attrs := baseAttributes(a)
	attrs["seller"] = a.Seller.String()
	attrs["kind"] = a.Kind.String()
	attrs["biddingAsset"] = a.BiddingAsset
	attrs["minPrice"] = amount.FormatOptional(a.MinPrice)
	attrs["buyNowPrice"] = amount.FormatOptional(a.BuyNowPrice)
	attrs["fees"] = strconv.Itoa(len(a.FeeRecipients))
	eventType := EventTypeAuctionCreated
	if a.Kind == KindFixedPrice {
		eventType = EventTypeSaleCreated
		if !a.WhitelistedBuyer.IsZero() {
			attrs["whitelistedBuyer"] = a.WhitelistedBuyer.String()
		}
	} else {
		attrs["bidPeriodSeconds"] = strconv.FormatInt(a.BidPeriodSeconds, 10)
		attrs["bidIncrease"] = amount.Format(a.BidIncrease)
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}

func newBidPlacedEvent(a *Auction) *types.Event {
	attrs := baseAttributes(a)
	attrs["bidder"] = a.HighestBidder.String()
	attrs["recipient"] = a.Target.Recipient(a.HighestBidder).String()
	attrs["asset"] = a.BidAsset
	attrs["amount"] = amount.FormatOptional(a.HighestBid)
	attrs["early"] = strconv.FormatBool(a.Status != StatusActive)
	if a.Committed() {
		attrs["auctionEndTime"] = strconv.FormatInt(a.AuctionEndTime, 10)
	}
	return &types.Event{Type: EventTypeBidPlaced, Attributes: attrs}
}

func newRefundEvent(eventType string, a *Auction, d escrow.Delivery, reason string) *types.Event {
	attrs := baseAttributes(a)
	attrs["bidder"] = d.Recipient.String()
	attrs["asset"] = d.Asset
	attrs["amount"] = amount.Format(d.Amount)
	attrs["escrowed"] = strconv.FormatBool(d.Escrowed)
	if reason != "" {
		attrs["reason"] = reason
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}

func newPayoutSentEvent(a *Auction, label string, d escrow.Delivery) *types.Event {
	attrs := baseAttributes(a)
	attrs["recipient"] = d.Recipient.String()
	attrs["asset"] = d.Asset
	attrs["amount"] = amount.Format(d.Amount)
	attrs["label"] = label
	attrs["path"] = d.Path
	attrs["escrowed"] = strconv.FormatBool(d.Escrowed)
	return &types.Event{Type: EventTypePayoutSent, Attributes: attrs}
}

func newSettledEvent(a *Auction, reason string, cd escrow.CollectibleDelivery, sellerProceeds string) *types.Event {
	attrs := baseAttributes(a)
	attrs["seller"] = a.Seller.String()
	attrs["winner"] = a.HighestBidder.String()
	attrs["recipient"] = cd.Recipient.String()
	attrs["asset"] = a.BidAsset
	attrs["price"] = amount.FormatOptional(a.HighestBid)
	attrs["sellerProceeds"] = sellerProceeds
	attrs["collectibleEscrowed"] = strconv.FormatBool(cd.Escrowed)
	attrs["reason"] = reason
	return &types.Event{Type: EventTypeSettled, Attributes: attrs}
}

func newTriggerEvent(eventType string, a *Auction, caller types.Address) *types.Event {
	attrs := baseAttributes(a)
	attrs["caller"] = caller.String()
	attrs["price"] = amount.FormatOptional(a.HighestBid)
	return &types.Event{Type: eventType, Attributes: attrs}
}

func newWithdrawnEvent(a *Auction, reason string) *types.Event {
	attrs := baseAttributes(a)
	attrs["seller"] = a.Seller.String()
	attrs["reason"] = reason
	return &types.Event{Type: EventTypeWithdrawn, Attributes: attrs}
}

func newPriceUpdatedEvent(eventType string, a *Auction) *types.Event {
	attrs := baseAttributes(a)
	attrs["minPrice"] = amount.FormatOptional(a.MinPrice)
	attrs["buyNowPrice"] = amount.FormatOptional(a.BuyNowPrice)
	return &types.Event{Type: eventType, Attributes: attrs}
}

func newWhitelistUpdatedEvent(a *Auction) *types.Event {
	attrs := baseAttributes(a)
	attrs["whitelistedBuyer"] = a.WhitelistedBuyer.String()
	return &types.Event{Type: EventTypeWhitelistedBuyerUpdated, Attributes: attrs}
}
