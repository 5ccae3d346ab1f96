package crowdfund

import (
	"errors"

	"github.com/crowdfund-org/crowdfund-go-base/predicates"
)

var (
	ErrMalformedOperation  = errors.New("malformed operation")
	ErrNotOwned            = errors.New("record is not owned by the program")
	ErrUnauthorized        = predicates.ErrUnauthorized
	ErrForbidden           = predicates.ErrForbidden
	ErrInvalidAccountState = errors.New("invalid account state")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientReserve = errors.New("insufficient storage reserve")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
)

// ExitCode is the numeric result of an operation as reported to the host.
type ExitCode uint32

const (
	ExitOK ExitCode = iota
	ExitMalformedOperation
	ExitNotOwned
	ExitUnauthorized
	ExitForbidden
	ExitInvalidAccountState
	ExitInsufficientFunds
	ExitInsufficientReserve
	ExitArithmeticOverflow
	ExitUnknown ExitCode = 0xff
)

var exitCodes = []struct {
	err  error
	code ExitCode
}{
	{ErrMalformedOperation, ExitMalformedOperation},
	{ErrNotOwned, ExitNotOwned},
	{ErrUnauthorized, ExitUnauthorized},
	{ErrForbidden, ExitForbidden},
	{ErrInvalidAccountState, ExitInvalidAccountState},
	{ErrInsufficientFunds, ExitInsufficientFunds},
	{ErrInsufficientReserve, ExitInsufficientReserve},
	{ErrArithmeticOverflow, ExitArithmeticOverflow},
}

// ToExitCode maps error returned by the program to exit code, nil error is ExitOK.
func ToExitCode(err error) ExitCode {
	if err == nil {
		return ExitOK
	}
	for _, ec := range exitCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ExitUnknown
}

func (c ExitCode) String() string {
	switch c {
	case ExitOK:
		return "OK"
	case ExitMalformedOperation:
		return "MalformedOperation"
	case ExitNotOwned:
		return "NotOwned"
	case ExitUnauthorized:
		return "Unauthorized"
	case ExitForbidden:
		return "Forbidden"
	case ExitInvalidAccountState:
		return "InvalidAccountState"
	case ExitInsufficientFunds:
		return "InsufficientFunds"
	case ExitInsufficientReserve:
		return "InsufficientReserve"
	case ExitArithmeticOverflow:
		return "ArithmeticOverflow"
	default:
		return "Unknown"
	}
}
