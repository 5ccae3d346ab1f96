/*
Package rent implements the storage reservation rule: a record is durably
retained by the store only when its balance covers the deposit required for
the size of its data buffer.
*/
package rent

import (
	"math"

	"github.com/crowdfund-org/crowdfund-go-base/types"
	"github.com/crowdfund-org/crowdfund-go-base/util"
)

const (
	DefaultPricePerByteYear uint64 = 3480
	DefaultExemptionYears   uint64 = 2
	// DefaultStorageOverhead is the number of bytes the store needs for the
	// metadata of a record (key, owner, balance...), charged on top of the data.
	DefaultStorageOverhead uint64 = 128
)

// ReserveCalculator returns the minimum balance for a record with data buffer of given length.
// The result must not decrease when dataLen grows.
type ReserveCalculator interface {
	MinimumBalance(dataLen int) uint64
}

type Rent struct {
	PricePerByteYear uint64 `toml:"price_per_byte_year"`
	ExemptionYears   uint64 `toml:"exemption_years"`
	StorageOverhead  uint64 `toml:"storage_overhead"`
}

func Default() Rent {
	return Rent{
		PricePerByteYear: DefaultPricePerByteYear,
		ExemptionYears:   DefaultExemptionYears,
		StorageOverhead:  DefaultStorageOverhead,
	}
}

/*
MinimumBalance returns (overhead + dataLen) * price * years. Saturates at
math.MaxUint64 so that absurd sizes can never be reserved.
*/
func (r Rent) MinimumBalance(dataLen int) uint64 {
	if dataLen < 0 {
		dataLen = 0
	}
	size, ok := util.SafeAdd(r.StorageOverhead, uint64(dataLen))
	if !ok {
		return math.MaxUint64
	}
	perYear, ok := util.SafeMul(size, r.PricePerByteYear)
	if !ok {
		return math.MaxUint64
	}
	total, ok := util.SafeMul(perYear, r.ExemptionYears)
	if !ok {
		return math.MaxUint64
	}
	return total
}

// IsReserved returns true if the balance of the record covers the deposit for its size.
func IsReserved(calc ReserveCalculator, rec *types.Record) bool {
	if rec == nil {
		return false
	}
	return rec.Balance >= calc.MinimumBalance(len(rec.Data))
}
