package crowdfund

import (
	"fmt"

	"github.com/crowdfund-org/crowdfund-go-base/predicates"
	"github.com/crowdfund-org/crowdfund-go-base/rent"
	"github.com/crowdfund-org/crowdfund-go-base/types"
)

/*
CreateCampaign overwrites the campaign record with the attributes.

Accounts:
 0. campaign record, writable, owned by the program, balance covering the storage reserve
 1. creator, signer; the key must be the creator in the attributes

No balance moves, the campaign record is funded before the call. Calling it
again on the same record is a full reset of the campaign. While the campaign
has raised funds only its creator may reset it.
*/
func (p *Processor) CreateCampaign(accounts []*types.AccountRef, attr *CreateCampaignAttributes) (*types.Event, error) {
	slots, err := accountSlots(accounts, "campaign", "creator")
	if err != nil {
		return nil, err
	}
	campaign, creator := slots[0], slots[1]

	if err := p.checkOwned("campaign", campaign); err != nil {
		return nil, err
	}
	capability, err := predicates.Authorize("creator", creator)
	if err != nil {
		return nil, err
	}
	if err := capability.MustBe("campaign creator", attr.Creator); err != nil {
		return nil, err
	}
	// a campaign holding raised funds may only be reset by its creator
	if live, err := ReadCampaign(campaign.Record); err == nil && live.AmountRaised > 0 {
		if err := capability.MustBe("creator of the running campaign", live.Creator); err != nil {
			return nil, err
		}
	}
	if !rent.IsReserved(p.reserve, campaign.Record) {
		return nil, fmt.Errorf("%w: campaign balance %d, required %d", ErrInsufficientReserve,
			campaign.Record.Balance, p.reserve.MinimumBalance(len(campaign.Record.Data)))
	}
	if err := checkWritable("campaign", campaign); err != nil {
		return nil, err
	}
	if err := checkDistinct("campaign", campaign, "creator", creator); err != nil {
		return nil, err
	}

	state := CampaignData(*attr)
	ev, err := types.NewEvent(p.programID, EventCampaignCreated, &CampaignCreated{
		Campaign:     campaign.Key,
		Creator:      state.Creator,
		Goal:         state.Goal,
		AmountRaised: state.AmountRaised,
	})
	if err != nil {
		return nil, err
	}
	if err := WriteState(campaign.Record.Data, &state); err != nil {
		return nil, fmt.Errorf("writing campaign: %w", err)
	}

	log.Infof("campaign %s created by %s, goal %d", campaign.Key, state.Creator, state.Goal)
	return ev, nil
}
