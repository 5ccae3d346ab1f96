/*
Package predicates implements the authorization checks of the programs.

Authorization is a property of the call slot: the host sets the signer flag of
a reference after verifying that the key of the slot approved the call. The
programs never verify signatures, they turn the flag into a Capability and then
state explicitly which identity the capability must match.
*/
package predicates

import (
	"errors"
	"fmt"

	"github.com/crowdfund-org/crowdfund-go-base/types"
)

var (
	// ErrUnauthorized is returned when the slot did not carry an authorization proof.
	ErrUnauthorized = errors.New("missing authorization proof")

	// ErrForbidden is returned when the proof is valid but for another party.
	ErrForbidden = errors.New("party is not allowed to perform the operation")
)

// Capability is the proof that Subject approved the current call.
type Capability struct {
	Slot    string        // name of the call slot which carried the proof
	Subject types.PartyID // key of the record in that slot
}

// Authorized returns true when the reference carries an authorization proof.
func Authorized(ref *types.AccountRef) bool {
	return ref != nil && ref.IsSigner
}

/*
Authorize returns capability for the party whose record was presented in the
slot, ErrUnauthorized when the slot doesn't carry the proof.
*/
func Authorize(slot string, ref *types.AccountRef) (Capability, error) {
	if !Authorized(ref) {
		return Capability{}, fmt.Errorf("%w: %s", ErrUnauthorized, slot)
	}
	return Capability{Slot: slot, Subject: ref.Key}, nil
}

/*
MustBe checks that the subject of the capability is the party stored in the
field (the name is only used for the error message).
*/
func (c Capability) MustBe(field string, party types.PartyID) error {
	if c.Subject != party {
		return fmt.Errorf("%w: %s is %s but %s was authorized by %s", ErrForbidden, field, party, c.Slot, c.Subject)
	}
	return nil
}
