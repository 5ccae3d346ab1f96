package crowdfund

import (
	"fmt"

	"github.com/crowdfund-org/crowdfund-go-base/predicates"
	"github.com/crowdfund-org/crowdfund-go-base/types"
	"github.com/crowdfund-org/crowdfund-go-base/util"
)

/*
Withdraw moves the amount from the campaign to the recipient record and
records the withdrawal into the withdrawal slip.

Accounts:
 0. campaign record, writable, owned by the program
 1. creator, signer, writable; the key must be the creator stored in the campaign
 2. recipient, writable; receives the funds, may be the creator
 3. withdrawal slip, writable, owned by the program; a dedicated scratch record,
    never the campaign, the creator or the recipient
*/
func (p *Processor) Withdraw(accounts []*types.AccountRef, attr *WithdrawAttributes) (*types.Event, error) {
	slots, err := accountSlots(accounts, "campaign", "creator", "recipient", "withdrawal")
	if err != nil {
		return nil, err
	}
	campaign, creator, recipient, slip := slots[0], slots[1], slots[2], slots[3]

	if err := p.checkOwned("campaign", campaign); err != nil {
		return nil, err
	}
	if err := checkWritable("campaign", campaign); err != nil {
		return nil, err
	}
	if err := checkWritable("creator", creator); err != nil {
		return nil, err
	}
	capability, err := predicates.Authorize("creator", creator)
	if err != nil {
		return nil, err
	}
	state, err := ReadCampaign(campaign.Record)
	if err != nil {
		return nil, err
	}
	if err := capability.MustBe("campaign creator", state.Creator); err != nil {
		return nil, err
	}
	if err := capability.MustBe("creator", attr.Creator); err != nil {
		return nil, err
	}

	if err := p.checkWithdrawShape(attr, campaign, creator, recipient, slip); err != nil {
		return nil, err
	}

	if campaign.Record.Balance < attr.Amount {
		return nil, fmt.Errorf("%w: campaign balance %d, amount %d", ErrInsufficientFunds, campaign.Record.Balance, attr.Amount)
	}
	raised, ok := util.SafeSub(state.AmountRaised, attr.Amount)
	if !ok {
		return nil, fmt.Errorf("%w: campaign has raised %d, amount %d", ErrInsufficientFunds, state.AmountRaised, attr.Amount)
	}
	recipientBalance, ok := util.SafeAdd(recipient.Record.Balance, attr.Amount)
	if !ok {
		return nil, fmt.Errorf("%w: recipient balance %d + %d", ErrArithmeticOverflow, recipient.Record.Balance, attr.Amount)
	}

	ev, err := types.NewEvent(p.programID, EventWithdrawalRecorded, &WithdrawalRecorded{
		Campaign:  campaign.Key,
		Slip:      slip.Key,
		Creator:   attr.Creator,
		Recipient: attr.Recipient,
		Amount:    attr.Amount,
	})
	if err != nil {
		return nil, err
	}

	state.AmountRaised = raised
	if err := WriteState(slip.Record.Data, (*WithdrawalData)(attr)); err != nil {
		return nil, fmt.Errorf("writing withdrawal slip: %w", err)
	}
	if err := WriteState(campaign.Record.Data, state); err != nil {
		return nil, fmt.Errorf("writing campaign: %w", err)
	}
	campaign.Record.Balance -= attr.Amount
	recipient.Record.Balance = recipientBalance

	log.Infof("withdrawn %d from %s to %s by %s", attr.Amount, campaign.Key, attr.Recipient, attr.Creator)
	return ev, nil
}

func (p *Processor) checkWithdrawShape(attr *WithdrawAttributes, campaign, creator, recipient, slip *types.AccountRef) error {
	if err := checkBinding("campaign", campaign, attr.Campaign); err != nil {
		return err
	}
	if err := checkBinding("recipient", recipient, attr.Recipient); err != nil {
		return err
	}
	for _, pair := range []struct {
		nameA, nameB string
		a, b         *types.AccountRef
	}{
		{"campaign", "creator", campaign, creator},
		{"campaign", "recipient", campaign, recipient},
		{"campaign", "withdrawal", campaign, slip},
		{"creator", "withdrawal", creator, slip},
		{"recipient", "withdrawal", recipient, slip},
	} {
		if err := checkDistinct(pair.nameA, pair.a, pair.nameB, pair.b); err != nil {
			return err
		}
	}
	if err := checkWritable("recipient", recipient); err != nil {
		return err
	}
	if err := checkWritable("withdrawal", slip); err != nil {
		return err
	}
	if err := p.checkOwned("withdrawal", slip); err != nil {
		return err
	}
	if err := ReadState(slip.Record.Data, &WithdrawalData{}); err != nil {
		return fmt.Errorf("reading withdrawal slip %s: %w", slip.Key, err)
	}
	return nil
}
