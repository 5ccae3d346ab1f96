package types

import (
	"crypto"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/crowdfund-org/crowdfund-go-base/cbor"
	abhash "github.com/crowdfund-org/crowdfund-go-base/hash"
)

var ErrEventIsNil = errors.New("event is nil")

/*
Event is an immutable record of a successful state transition. Programs emit
events because their scratch records only hold the latest value, the events
are the audit trail.

The event gets its Sequence and ID when the store appends it to the event log.
*/
type Event struct {
	_        struct{}      `cbor:",toarray"`
	ID       hexutil.Bytes `json:"id"`
	Program  Address       `json:"program"`
	Sequence uint64        `json:"sequence,string"` // position in the event log, starting from 1
	Data     cbor.RawCBOR  `json:"data"`            // tagged CBOR, the tag is the kind of the event
}

// eventHashData defines the cbor data for calculating event ID.
type eventHashData struct {
	_        struct{} `cbor:",toarray"`
	Program  Address
	Data     cbor.RawCBOR
	Sequence uint64
}

// NewEvent encodes payload as a CBOR value tagged with kind. The event has no ID until it is sealed.
func NewEvent(program Address, kind cbor.Tag, payload any) (*Event, error) {
	data, err := cbor.MarshalTaggedValue(kind, payload)
	if err != nil {
		return nil, fmt.Errorf("encoding event payload: %w", err)
	}
	return &Event{Program: program, Data: data}, nil
}

/*
Seal returns copy of the event with the sequence number assigned and the ID
calculated. Sequence numbers are unique within an event log, so are the IDs
of the events in it, whatever their payload.
*/
func (e *Event) Seal(sequence uint64) (*Event, error) {
	if e == nil {
		return nil, ErrEventIsNil
	}
	if sequence == 0 {
		return nil, errors.New("event sequence number must be positive")
	}
	h := abhash.New(crypto.SHA256.New())
	h.Write(eventHashData{Program: e.Program, Data: e.Data, Sequence: sequence})
	id, err := h.Sum()
	if err != nil {
		return nil, fmt.Errorf("hashing event: %w", err)
	}
	return &Event{ID: id, Program: e.Program, Sequence: sequence, Data: e.Data}, nil
}

func (e *Event) IsSealed() bool {
	return e != nil && e.Sequence != 0
}

func (e *Event) Kind() (cbor.Tag, error) {
	if e == nil {
		return 0, ErrEventIsNil
	}
	return cbor.PeekTag(e.Data)
}

// UnmarshalPayload decodes the event data into v, kind must match the tag of the data.
func (e *Event) UnmarshalPayload(kind cbor.Tag, v any) error {
	if e == nil {
		return ErrEventIsNil
	}
	return cbor.UnmarshalTaggedValue(kind, e.Data, v)
}
