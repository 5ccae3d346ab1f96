package crowdfund

import (
	"fmt"

	"github.com/crowdfund-org/crowdfund-go-base/types"
)

// Operation tags, the first byte of the operation data.
const (
	OperationCreateCampaign byte = 0
	OperationDonate         byte = 1
	OperationWithdraw       byte = 2
)

var (
	_ Operation = (*CreateCampaignAttributes)(nil)
	_ Operation = (*DonateAttributes)(nil)
	_ Operation = (*WithdrawAttributes)(nil)
)

// Operation is the decoded operation data, payload layouts are the same as
// the layouts of the records the operations write.
type Operation interface {
	State
	Tag() byte
	Name() string
}

type (
	CreateCampaignAttributes struct {
		Creator      types.PartyID // the party who may withdraw from the campaign
		Goal         uint64        // amount the campaign wants to raise
		AmountRaised uint64        // initial value of the raised amount
	}

	DonateAttributes struct {
		Campaign types.Address // the campaign record donated to
		Donor    types.PartyID // must be the key of the donation slip record
		Amount   uint64
	}

	WithdrawAttributes struct {
		Campaign  types.Address // the campaign record withdrawn from
		Creator   types.PartyID // must be the creator stored in the campaign
		Recipient types.PartyID // the record receiving the funds
		Amount    uint64
	}
)

/*
DecodeOperation decodes the tag byte and the payload following it. Unknown tag
or too short payload is ErrMalformedOperation, bytes after the payload are
ignored.
*/
func DecodeOperation(data []byte) (Operation, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty operation data", ErrMalformedOperation)
	}
	var op Operation
	switch data[0] {
	case OperationCreateCampaign:
		op = &CreateCampaignAttributes{}
	case OperationDonate:
		op = &DonateAttributes{}
	case OperationWithdraw:
		op = &WithdrawAttributes{}
	default:
		return nil, fmt.Errorf("%w: unknown operation tag %d", ErrMalformedOperation, data[0])
	}
	if err := ReadState(data[1:], op); err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", op.Name(), err)
	}
	return op, nil
}

// EncodeOperation returns the wire encoding of the operation: tag byte followed by the payload.
func EncodeOperation(op Operation) []byte {
	buf := make([]byte, 1+op.Size())
	buf[0] = op.Tag()
	op.encode(buf[1:])
	return buf
}

func (a *CreateCampaignAttributes) Tag() byte         { return OperationCreateCampaign }
func (a *CreateCampaignAttributes) Name() string      { return "createCampaign" }
func (a *CreateCampaignAttributes) Size() int         { return CampaignSize }
func (a *CreateCampaignAttributes) encode(buf []byte) { (*CampaignData)(a).encode(buf) }
func (a *CreateCampaignAttributes) decode(buf []byte) { (*CampaignData)(a).decode(buf) }
func (a *DonateAttributes) Tag() byte                 { return OperationDonate }
func (a *DonateAttributes) Name() string              { return "donate" }
func (a *DonateAttributes) Size() int                 { return DonationSize }
func (a *DonateAttributes) encode(buf []byte)         { (*DonationData)(a).encode(buf) }
func (a *DonateAttributes) decode(buf []byte)         { (*DonationData)(a).decode(buf) }
func (a *WithdrawAttributes) Tag() byte               { return OperationWithdraw }
func (a *WithdrawAttributes) Name() string            { return "withdraw" }
func (a *WithdrawAttributes) Size() int               { return WithdrawalSize }
func (a *WithdrawAttributes) encode(buf []byte)       { (*WithdrawalData)(a).encode(buf) }
func (a *WithdrawAttributes) decode(buf []byte)       { (*WithdrawalData)(a).decode(buf) }
