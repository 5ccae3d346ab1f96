package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/crowdfund-org/crowdfund-go-base/cbor"
	"github.com/crowdfund-org/crowdfund-go-base/types"
)

var (
	bucketRecords = []byte("records")
	bucketEvents  = []byte("events")
)

var _ Store = (*BoltStore)(nil)

/*
BoltStore persists the records and the event log in a bbolt database. Records
are keyed by address, events by the sequence number of the events bucket. Both
are stored CBOR encoded.
*/
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens or creates the database at dbPath, the parent directory is created if needed.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("state: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("state: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRecords, bucketEvents} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("state: create buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) Get(key types.Address) (*types.Record, error) {
	rec := &types.Record{}
	err := s.view(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get(key[:])
		if data == nil {
			return ErrRecordNotFound
		}
		if err := cbor.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("state: decode record %s: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *BoltStore) Records() ([]*types.Record, error) {
	var res []*types.Record
	err := s.view(func(tx *bbolt.Tx) error {
		// bbolt iterates keys in byte order which is the address order
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			rec := &types.Record{}
			if err := cbor.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("state: decode record %x: %w", k, err)
			}
			res = append(res, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *BoltStore) Commit(records []*types.Record, events []*types.Event) error {
	if err := validateCommit(records, events); err != nil {
		return err
	}
	sealed := make([]*types.Event, len(events))
	err := s.update(func(tx *bbolt.Tx) error {
		rb := tx.Bucket(bucketRecords)
		for _, r := range records {
			if r.IsEmpty() {
				if err := rb.Delete(r.Address[:]); err != nil {
					return fmt.Errorf("state: delete record %s: %w", r.Address, err)
				}
				continue
			}
			data, err := cbor.Marshal(r)
			if err != nil {
				return fmt.Errorf("state: encode record %s: %w", r.Address, err)
			}
			if err := rb.Put(r.Address[:], data); err != nil {
				return fmt.Errorf("state: put record %s: %w", r.Address, err)
			}
		}

		eb := tx.Bucket(bucketEvents)
		for i, ev := range events {
			seq, err := eb.NextSequence()
			if err != nil {
				return fmt.Errorf("state: event sequence: %w", err)
			}
			if sealed[i], err = ev.Seal(seq); err != nil {
				return fmt.Errorf("state: sealing event %d: %w", seq, err)
			}
			data, err := cbor.Marshal(sealed[i])
			if err != nil {
				return fmt.Errorf("state: encode event %d: %w", seq, err)
			}
			if err := eb.Put(sequenceKey(seq), data); err != nil {
				return fmt.Errorf("state: put event %d: %w", seq, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	publishSealed(events, sealed)
	return nil
}

func (s *BoltStore) Events() ([]*types.Event, error) {
	var res []*types.Event
	err := s.view(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEvents).ForEach(func(k, v []byte) error {
			ev := &types.Event{}
			if err := cbor.Unmarshal(v, ev); err != nil {
				return fmt.Errorf("state: decode event %d: %w", binary.BigEndian.Uint64(k), err)
			}
			res = append(res, ev)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *BoltStore) view(fn func(tx *bbolt.Tx) error) error {
	return closedToErr(s.db.View(fn))
}

func (s *BoltStore) update(fn func(tx *bbolt.Tx) error) error {
	return closedToErr(s.db.Update(fn))
}

func closedToErr(err error) error {
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return fmt.Errorf("%w: %w", ErrStoreClosed, err)
	}
	return err
}

// sequenceKey encodes the event sequence number as big-endian key so the events iterate in commit order.
func sequenceKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
