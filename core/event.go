package core

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventCollateralDeposited EventType = "collateral_deposited"
	EventCollateralRedeemed  EventType = "collateral_redeemed"
)

// Event is a mutation notification. Redemption events carry both sides
// of the movement; deposits set From and To to the depositing account.
type Event struct {
	Type      EventType       `json:"type"`
	From      uuid.UUID       `json:"from"`
	To        uuid.UUID       `json:"to"`
	AssetId   string          `json:"assetId"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp int64           `json:"timestamp"`
}

// Notifier delivers committed events to downstream consumers. Delivery
// failures are not part of operation atomicity; the engine logs and
// moves on.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

func NewCollateralDeposited(account uuid.UUID, assetId string, amount decimal.Decimal, ts int64) Event {
	return Event{
		Type:      EventCollateralDeposited,
		From:      account,
		To:        account,
		AssetId:   assetId,
		Amount:    amount,
		Timestamp: ts,
	}
}

func NewCollateralRedeemed(from, to uuid.UUID, assetId string, amount decimal.Decimal, ts int64) Event {
	return Event{
		Type:      EventCollateralRedeemed,
		From:      from,
		To:        to,
		AssetId:   assetId,
		Amount:    amount,
		Timestamp: ts,
	}
}
