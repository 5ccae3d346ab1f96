/*
Package state keeps the records and the event log of the ledger.

Stores hand out copies, a record returned by Get may be mutated freely and is
persisted only by passing it to Commit.
*/
package state

import (
	"crypto"
	"errors"
	"fmt"

	"github.com/crowdfund-org/crowdfund-go-base/tree/mt"
	"github.com/crowdfund-org/crowdfund-go-base/types"
	"github.com/crowdfund-org/crowdfund-go-base/util"
)

var (
	ErrRecordNotFound = errors.New("state: record not found")
	ErrStoreClosed    = errors.New("state: store is closed")
)

type Store interface {
	// Get returns copy of the record, ErrRecordNotFound when the key has no record.
	Get(key types.Address) (*types.Record, error)

	// Records returns copies of all the records ordered by address.
	Records() ([]*types.Record, error)

	/*
		Commit stores the records and appends the events to the event log, both
		or neither. Empty records (see types.Record.IsEmpty) are removed. The
		events are sealed with their position in the log, on success the
		passed events are updated with the assigned Sequence and ID.
	*/
	Commit(records []*types.Record, events []*types.Event) error

	// Events returns the event log in the order the events were committed.
	Events() ([]*types.Event, error)

	Close() error
}

/*
RootHash returns the root of the Merkle tree built over the hashes of the
records, ordered by address. Nil when the store is empty.
*/
func RootHash(s Store, algorithm crypto.Hash) ([]byte, error) {
	records, err := s.Records()
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	tree, err := mt.New(algorithm, util.TransformSlice(records, func(r *types.Record) mt.Data { return r }))
	if err != nil {
		return nil, fmt.Errorf("building state tree: %w", err)
	}
	return tree.GetRootHash(), nil
}

func validateCommit(records []*types.Record, events []*types.Event) error {
	for i, r := range records {
		if r == nil {
			return fmt.Errorf("record %d is nil", i)
		}
	}
	for i, ev := range events {
		if ev == nil {
			return fmt.Errorf("event %d: %w", i, types.ErrEventIsNil)
		}
		if ev.IsSealed() {
			return fmt.Errorf("event %d is already in an event log (sequence %d)", i, ev.Sequence)
		}
	}
	return nil
}

// publishSealed copies the sealed events over the events passed to Commit.
func publishSealed(events, sealed []*types.Event) {
	for i := range events {
		*events[i] = *sealed[i]
	}
}
