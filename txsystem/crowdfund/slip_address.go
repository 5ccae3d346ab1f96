package crowdfund

import (
	"crypto"
	"fmt"

	abhash "github.com/crowdfund-org/crowdfund-go-base/hash"
	"github.com/crowdfund-org/crowdfund-go-base/types"
)

// slipHashData defines the cbor data for deriving slip addresses.
type slipHashData struct {
	_        struct{} `cbor:",toarray"`
	Program  types.Address
	Campaign types.Address
	Index    uint32
}

/*
SlipAddresses returns function which generates slip record addresses for the
campaign. The sequence is deterministic, so the addresses of the slips of a
campaign can be recomputed from the campaign address. Each call returns the
next address of the sequence.
*/
func SlipAddresses(program, campaign types.Address) func() (types.Address, error) {
	hashData := slipHashData{
		Program:  program,
		Campaign: campaign,
	}

	return func() (types.Address, error) {
		h := abhash.New(crypto.SHA256.New())
		h.Write(hashData)
		sum, err := h.Sum()
		if err != nil {
			return types.Address{}, fmt.Errorf("hashing slip data: %w", err)
		}
		hashData.Index++
		return types.BytesToAddress(sum)
	}
}
