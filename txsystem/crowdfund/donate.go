package crowdfund

import (
	"fmt"

	"github.com/crowdfund-org/crowdfund-go-base/predicates"
	"github.com/crowdfund-org/crowdfund-go-base/types"
	"github.com/crowdfund-org/crowdfund-go-base/util"
)

/*
Donate moves the amount from the donation slip to the campaign record, records
the donation into the slip and adds it to the raised amount of the campaign.

Accounts:
 0. campaign record, writable, owned by the program
 1. donation slip, signer, writable, owned by the program; its key is the donor
*/
func (p *Processor) Donate(accounts []*types.AccountRef, attr *DonateAttributes) (*types.Event, error) {
	slots, err := accountSlots(accounts, "campaign", "donation")
	if err != nil {
		return nil, err
	}
	campaign, slip := slots[0], slots[1]

	if err := p.checkOwned("campaign", campaign); err != nil {
		return nil, err
	}
	if err := checkWritable("campaign", campaign); err != nil {
		return nil, err
	}
	if err := checkDistinct("campaign", campaign, "donation", slip); err != nil {
		return nil, err
	}
	if err := checkBinding("campaign", campaign, attr.Campaign); err != nil {
		return nil, err
	}
	capability, err := predicates.Authorize("donation", slip)
	if err != nil {
		return nil, err
	}
	if err := capability.MustBe("donor", attr.Donor); err != nil {
		return nil, err
	}
	if err := p.checkOwned("donation", slip); err != nil {
		return nil, err
	}
	if err := checkWritable("donation", slip); err != nil {
		return nil, err
	}
	if slip.Record.Balance < attr.Amount {
		return nil, fmt.Errorf("%w: donation balance %d, amount %d", ErrInsufficientFunds, slip.Record.Balance, attr.Amount)
	}

	state, err := ReadCampaign(campaign.Record)
	if err != nil {
		return nil, err
	}
	// uninitialized slip is not treated as an empty donation
	if err := ReadState(slip.Record.Data, &DonationData{}); err != nil {
		return nil, fmt.Errorf("reading donation slip %s: %w", slip.Key, err)
	}

	slipBalance, ok := util.SafeSub(slip.Record.Balance, attr.Amount)
	if !ok {
		return nil, fmt.Errorf("%w: donation balance underflow", ErrInsufficientFunds)
	}
	campaignBalance, ok := util.SafeAdd(campaign.Record.Balance, attr.Amount)
	if !ok {
		return nil, fmt.Errorf("%w: campaign balance %d + %d", ErrArithmeticOverflow, campaign.Record.Balance, attr.Amount)
	}
	raised, ok := util.SafeAdd(state.AmountRaised, attr.Amount)
	if !ok {
		return nil, fmt.Errorf("%w: campaign amount raised %d + %d", ErrArithmeticOverflow, state.AmountRaised, attr.Amount)
	}

	ev, err := types.NewEvent(p.programID, EventDonationRecorded, &DonationRecorded{
		Campaign:     campaign.Key,
		Slip:         slip.Key,
		Donor:        attr.Donor,
		Amount:       attr.Amount,
		AmountRaised: raised,
	})
	if err != nil {
		return nil, err
	}

	// buffer lengths were checked above, the writes can't fail
	state.AmountRaised = raised
	if err := WriteState(slip.Record.Data, (*DonationData)(attr)); err != nil {
		return nil, fmt.Errorf("writing donation slip: %w", err)
	}
	if err := WriteState(campaign.Record.Data, state); err != nil {
		return nil, fmt.Errorf("writing campaign: %w", err)
	}
	slip.Record.Balance = slipBalance
	campaign.Record.Balance = campaignBalance

	log.Infof("donated %d to %s by %s, raised %d", attr.Amount, campaign.Key, attr.Donor, raised)
	return ev, nil
}
