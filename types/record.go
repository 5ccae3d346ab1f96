package types

import (
	"bytes"
	"crypto"

	"github.com/ethereum/go-ethereum/common/hexutil"

	abhash "github.com/crowdfund-org/crowdfund-go-base/hash"
)

type (
	/*
	Record is a fixed size byte buffer with a custodied native balance, addressed
	by an external key. Only the program named by Owner may interpret or mutate
	Data, and only it may debit Balance.

	Not safe for concurrent access.
	*/
	Record struct {
		_       struct{}      `cbor:",toarray"`
		Address Address       `json:"address"`
		Owner   Address       `json:"owner"`          // custody tag
		Balance uint64        `json:"balance,string"` // the actual money, in the native unit
		Data    hexutil.Bytes `json:"data"`
	}

	/*
	AccountRef is a record as presented to a program in one call slot. The
	IsSigner flag is the authorization proof of the slot, established before the
	program runs. Two slots may reference the same underlying Record.
	*/
	AccountRef struct {
		Key        Address
		IsSigner   bool
		IsWritable bool
		Record     *Record
	}
)

func NewRecord(address, owner Address, balance uint64, dataLen int) *Record {
	return &Record{
		Address: address,
		Owner:   owner,
		Balance: balance,
		Data:    make([]byte, dataLen),
	}
}

func (r *Record) Copy() *Record {
	if r == nil {
		return nil
	}
	return &Record{
		Address: r.Address,
		Owner:   r.Owner,
		Balance: r.Balance,
		Data:    bytes.Clone(r.Data),
	}
}

// IsEmpty returns true for records which hold nothing and would not be retained by the store.
func (r *Record) IsEmpty() bool {
	return r.Balance == 0 && len(r.Data) == 0 && r.Owner == SystemProgramID
}

func (r *Record) IsOwnedBy(program Address) bool {
	return r.Owner == program
}

// Hash returns hash of the CBOR encoded record. Record always encodes, the error is always nil.
func (r *Record) Hash(algorithm crypto.Hash) ([]byte, error) {
	return abhash.Sum(algorithm, r), nil
}

// Equal compares all the fields of the records, including every byte of the data buffer.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Address == o.Address &&
		r.Owner == o.Owner &&
		r.Balance == o.Balance &&
		bytes.Equal(r.Data, o.Data)
}
