package types

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const AddressLength = 32

type (
	/*
	Address is the key of a record in the record store. The same 32 byte space
	is used for party identities and for the custody tags (program IDs) of the
	records, a party "is" the record it signs with.
	*/
	Address [AddressLength]byte

	// PartyID identifies a participant (campaign creator, donor, recipient).
	PartyID = Address
)

// SystemProgramID is the custody tag of records not claimed by any program.
var SystemProgramID = Address{}

func BytesToAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("address length must be %d bytes, got %d bytes", AddressLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// HexToAddress parses 0x prefixed hex encoded address.
func HexToAddress(s string) (Address, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("decoding address %q: %w", s, err)
	}
	return BytesToAddress(b)
}

func (a Address) Bytes() []byte {
	return bytes.Clone(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Compare(key Address) int {
	return bytes.Compare(a[:], key[:])
}

func (a Address) String() string {
	return hexutil.Encode(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return hexutil.Bytes(a[:]).MarshalText()
}

func (a *Address) UnmarshalText(src []byte) error {
	var b hexutil.Bytes
	if err := b.UnmarshalText(src); err != nil {
		return err
	}
	addr, err := BytesToAddress(b)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
