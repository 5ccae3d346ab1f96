/*
Package crowdfund contains helpers for tests working with crowdfund records.
*/
package crowdfund

import (
	"crypto/rand"
	"testing"

	"github.com/crowdfund-org/crowdfund-go-base/types"
)

// ProgramID is the custody tag used by the test processors.
var ProgramID = types.Address{0xcf, 0x01}

// NewAddress returns random address.
func NewAddress(t *testing.T) types.Address {
	t.Helper()
	var a types.Address
	if _, err := rand.Read(a[:]); err != nil {
		t.Fatal("failed to generate address:", err)
	}
	return a
}

/*
AddressWithSuffix returns address which is all zeroes except the last byte.
Handy when the test output must be readable.
*/
func AddressWithSuffix(suffix byte) types.Address {
	var a types.Address
	a[len(a)-1] = suffix
	return a
}

// ProgramRecord returns record owned by ProgramID with data buffer of given size.
func ProgramRecord(t *testing.T, balance uint64, dataLen int) *types.Record {
	return types.NewRecord(NewAddress(t), ProgramID, balance, dataLen)
}

// WalletRecord returns record owned by the system program, without data.
func WalletRecord(t *testing.T, balance uint64) *types.Record {
	return types.NewRecord(NewAddress(t), types.SystemProgramID, balance, 0)
}

// Ref returns reference to the record with given flags.
func Ref(rec *types.Record, signer, writable bool) *types.AccountRef {
	return &types.AccountRef{Key: rec.Address, IsSigner: signer, IsWritable: writable, Record: rec}
}

// Snapshot returns deep copies of the records, for comparing the state before and after a call.
func Snapshot(records ...*types.Record) []*types.Record {
	res := make([]*types.Record, len(records))
	for i, r := range records {
		res[i] = r.Copy()
	}
	return res
}

// RequireUnchanged fails the test when any of the records differs from the snapshot.
func RequireUnchanged(t *testing.T, snapshot []*types.Record, records ...*types.Record) {
	t.Helper()
	if len(snapshot) != len(records) {
		t.Fatalf("snapshot has %d records, got %d", len(snapshot), len(records))
	}
	for i := range records {
		if !snapshot[i].Equal(records[i]) {
			t.Errorf("record %d (%s) changed:\nbefore: %+v\nafter:  %+v", i, records[i].Address, snapshot[i], records[i])
		}
	}
}
