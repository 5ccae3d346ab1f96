package crowdfund

import (
	"encoding/binary"
	"fmt"

	"github.com/crowdfund-org/crowdfund-go-base/types"
)

// Record layouts, fixed length and no padding. Integers are little-endian.
const (
	CampaignSize   = types.AddressLength + 8 + 8 // creator, goal, amount raised
	DonationSize   = 2*types.AddressLength + 8   // campaign, donor, amount
	WithdrawalSize = 3*types.AddressLength + 8   // campaign, creator, recipient, amount
)

var (
	_ State = (*CampaignData)(nil)
	_ State = (*DonationData)(nil)
	_ State = (*WithdrawalData)(nil)
)

// State is the structured content of a record's data buffer.
type State interface {
	Size() int
	encode(buf []byte)
	decode(buf []byte)
}

type (
	CampaignData struct {
		Creator      types.PartyID `json:"creator"`
		Goal         uint64        `json:"goal,string"`
		AmountRaised uint64        `json:"amountRaised,string"`
	}

	// DonationData is the latest donation made through the slip record, overwritten on each donation.
	DonationData struct {
		Campaign types.Address `json:"campaign"`
		Donor    types.PartyID `json:"donor"`
		Amount   uint64        `json:"amount,string"`
	}

	// WithdrawalData is the latest withdrawal recorded into the slip record.
	WithdrawalData struct {
		Campaign  types.Address `json:"campaign"`
		Creator   types.PartyID `json:"creator"`
		Recipient types.PartyID `json:"recipient"`
		Amount    uint64        `json:"amount,string"`
	}
)

/*
ReadState decodes the structured state v from the data buffer of a record.
Buffer shorter than the layout of v is an error, bytes after the layout are
ignored.
*/
func ReadState(data []byte, v State) error {
	if len(data) < v.Size() {
		return fmt.Errorf("%w: %T needs %d bytes, buffer has %d", ErrMalformedOperation, v, v.Size(), len(data))
	}
	v.decode(data)
	return nil
}

/*
WriteState encodes v into the prefix of the data buffer. Bytes after the
layout of v are left untouched.
*/
func WriteState(data []byte, v State) error {
	if len(data) < v.Size() {
		return fmt.Errorf("%w: %T needs %d bytes, buffer has %d", ErrMalformedOperation, v, v.Size(), len(data))
	}
	v.encode(data)
	return nil
}

// ReadCampaign is a helper for reading the campaign record data.
func ReadCampaign(rec *types.Record) (*CampaignData, error) {
	c := &CampaignData{}
	if err := ReadState(rec.Data, c); err != nil {
		return nil, fmt.Errorf("reading campaign %s: %w", rec.Address, err)
	}
	return c, nil
}

func (c *CampaignData) Size() int { return CampaignSize }

func (c *CampaignData) encode(buf []byte) {
	w := layout{buf: buf}
	w.putAddress(c.Creator)
	w.putUint64(c.Goal)
	w.putUint64(c.AmountRaised)
}

func (c *CampaignData) decode(buf []byte) {
	r := layout{buf: buf}
	c.Creator = r.address()
	c.Goal = r.uint64()
	c.AmountRaised = r.uint64()
}

func (d *DonationData) Size() int { return DonationSize }

func (d *DonationData) encode(buf []byte) {
	w := layout{buf: buf}
	w.putAddress(d.Campaign)
	w.putAddress(d.Donor)
	w.putUint64(d.Amount)
}

func (d *DonationData) decode(buf []byte) {
	r := layout{buf: buf}
	d.Campaign = r.address()
	d.Donor = r.address()
	d.Amount = r.uint64()
}

func (w *WithdrawalData) Size() int { return WithdrawalSize }

func (w *WithdrawalData) encode(buf []byte) {
	l := layout{buf: buf}
	l.putAddress(w.Campaign)
	l.putAddress(w.Creator)
	l.putAddress(w.Recipient)
	l.putUint64(w.Amount)
}

func (w *WithdrawalData) decode(buf []byte) {
	l := layout{buf: buf}
	w.Campaign = l.address()
	w.Creator = l.address()
	w.Recipient = l.address()
	w.Amount = l.uint64()
}

// layout reads/writes fields one after another, the caller checks the buffer length.
type layout struct {
	buf []byte
	off int
}

func (l *layout) putAddress(a types.Address) {
	l.off += copy(l.buf[l.off:l.off+types.AddressLength], a[:])
}

func (l *layout) putUint64(v uint64) {
	binary.LittleEndian.PutUint64(l.buf[l.off:l.off+8], v)
	l.off += 8
}

func (l *layout) address() (a types.Address) {
	l.off += copy(a[:], l.buf[l.off:l.off+types.AddressLength])
	return a
}

func (l *layout) uint64() uint64 {
	v := binary.LittleEndian.Uint64(l.buf[l.off : l.off+8])
	l.off += 8
	return v
}
