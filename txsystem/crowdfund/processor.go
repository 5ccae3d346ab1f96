package crowdfund

import (
	"fmt"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/crowdfund-org/crowdfund-go-base/rent"
	"github.com/crowdfund-org/crowdfund-go-base/types"
)

var log = logging.Logger("crowdfund")

/*
Processor executes crowdfund operations against the records presented by the
host. It keeps no state between calls and must not be called concurrently on
the same records, the host serializes calls and commits the mutated records
only when Process returns nil error.

Every handler validates all its preconditions before mutating anything, so on
error the records are left exactly as they were.
*/
type Processor struct {
	programID types.Address
	reserve   rent.ReserveCalculator
}

func NewProcessor(programID types.Address, reserve rent.ReserveCalculator) *Processor {
	return &Processor{programID: programID, reserve: reserve}
}

// ProgramID is the custody tag of the records this processor may write.
func (p *Processor) ProgramID() types.Address {
	return p.programID
}

/*
Process decodes the operation data and executes the operation. Returns the
events of the operation on success.
*/
func (p *Processor) Process(accounts []*types.AccountRef, data []byte) ([]*types.Event, error) {
	op, err := DecodeOperation(data)
	if err != nil {
		log.Debugf("rejected operation data: %v", err)
		return nil, err
	}

	var ev *types.Event
	switch attr := op.(type) {
	case *CreateCampaignAttributes:
		ev, err = p.CreateCampaign(accounts, attr)
	case *DonateAttributes:
		ev, err = p.Donate(accounts, attr)
	case *WithdrawAttributes:
		ev, err = p.Withdraw(accounts, attr)
	default:
		err = fmt.Errorf("%w: unsupported operation %T", ErrMalformedOperation, op)
	}
	if err != nil {
		log.Debugw("operation rejected", "op", op.Name(), "exit", ToExitCode(err).String(), "err", err)
		return nil, fmt.Errorf("%s: %w", op.Name(), err)
	}
	return []*types.Event{ev}, nil
}

/*
accountSlots returns the references for the named slots, in the order the
operation expects them. References past the named slots are ignored.
*/
func accountSlots(accounts []*types.AccountRef, names ...string) ([]*types.AccountRef, error) {
	if len(accounts) < len(names) {
		return nil, fmt.Errorf("%w: expected %d accounts (%s), got %d",
			ErrInvalidAccountState, len(names), strings.Join(names, ", "), len(accounts))
	}
	for i, name := range names {
		ref := accounts[i]
		if ref == nil || ref.Record == nil {
			return nil, fmt.Errorf("%w: %s account is missing", ErrInvalidAccountState, name)
		}
		if ref.Record.Address != ref.Key {
			return nil, fmt.Errorf("%w: %s account key %s does not match the record %s",
				ErrInvalidAccountState, name, ref.Key, ref.Record.Address)
		}
	}
	return accounts[:len(names)], nil
}

func (p *Processor) checkOwned(slot string, ref *types.AccountRef) error {
	if !ref.Record.IsOwnedBy(p.programID) {
		return fmt.Errorf("%w: %s account %s is owned by %s", ErrNotOwned, slot, ref.Key, ref.Record.Owner)
	}
	return nil
}

func checkWritable(slot string, ref *types.AccountRef) error {
	if !ref.IsWritable {
		return fmt.Errorf("%w: %s account must be writable", ErrInvalidAccountState, slot)
	}
	return nil
}

// checkDistinct rejects aliasing of two slots, references are compared by key.
func checkDistinct(slotA string, a *types.AccountRef, slotB string, b *types.AccountRef) error {
	if a.Key == b.Key {
		return fmt.Errorf("%w: %s and %s account must be different records", ErrInvalidAccountState, slotA, slotB)
	}
	return nil
}

// checkBinding verifies that the address named in the operation is the record presented in the slot.
func checkBinding(slot string, ref *types.AccountRef, addr types.Address) error {
	if ref.Key != addr {
		return fmt.Errorf("%w: operation names %s %s but the account is %s", ErrInvalidAccountState, slot, addr, ref.Key)
	}
	return nil
}
