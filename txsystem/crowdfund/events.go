package crowdfund

import (
	"fmt"

	"github.com/crowdfund-org/crowdfund-go-base/cbor"
	"github.com/crowdfund-org/crowdfund-go-base/types"
)

// Event kinds, used as the CBOR tag of the event data.
const (
	EventCampaignCreated cbor.Tag = 0xcf00 + iota
	EventDonationRecorded
	EventWithdrawalRecorded
)

type (
	CampaignCreated struct {
		_            struct{}      `cbor:",toarray"`
		Campaign     types.Address `json:"campaign"`
		Creator      types.PartyID `json:"creator"`
		Goal         uint64        `json:"goal,string"`
		AmountRaised uint64        `json:"amountRaised,string"`
	}

	DonationRecorded struct {
		_            struct{}      `cbor:",toarray"`
		Campaign     types.Address `json:"campaign"`
		Slip         types.Address `json:"slip"`
		Donor        types.PartyID `json:"donor"`
		Amount       uint64        `json:"amount,string"`
		AmountRaised uint64        `json:"amountRaised,string"` // campaign total after the donation
	}

	WithdrawalRecorded struct {
		_         struct{}      `cbor:",toarray"`
		Campaign  types.Address `json:"campaign"`
		Slip      types.Address `json:"slip"`
		Creator   types.PartyID `json:"creator"`
		Recipient types.PartyID `json:"recipient"`
		Amount    uint64        `json:"amount,string"`
	}
)

// DecodeEvent returns the typed payload of an event emitted by the program.
func DecodeEvent(ev *types.Event) (any, error) {
	kind, err := ev.Kind()
	if err != nil {
		return nil, err
	}
	var v any
	switch kind {
	case EventCampaignCreated:
		v = &CampaignCreated{}
	case EventDonationRecorded:
		v = &DonationRecorded{}
	case EventWithdrawalRecorded:
		v = &WithdrawalRecorded{}
	default:
		return nil, fmt.Errorf("unknown event kind %#x", kind)
	}
	if err := ev.UnmarshalPayload(kind, v); err != nil {
		return nil, fmt.Errorf("decoding event %#x: %w", kind, err)
	}
	return v, nil
}
