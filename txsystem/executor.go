/*
Package txsystem executes transactions against the record store.

The Executor plays the host runtime for the programs: it loads the records a
transaction references, hands them to the program, checks that the program
stayed within the runtime rules and commits the result. A failed transaction
leaves the store untouched.
*/
package txsystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	logging "github.com/ipfs/go-log/v2"

	"github.com/crowdfund-org/crowdfund-go-base/state"
	"github.com/crowdfund-org/crowdfund-go-base/types"
	"github.com/crowdfund-org/crowdfund-go-base/util"
)

var log = logging.Logger("txsystem")

var (
	ErrUnknownProgram     = errors.New("unknown program")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrRuntimeViolation   = errors.New("program violated runtime rules")
)

type (
	// Program is the code owning records, the Executor calls Process with the
	// references of the transaction.
	Program interface {
		ProgramID() types.Address
		Process(accounts []*types.AccountRef, data []byte) ([]*types.Event, error)
	}

	AccountMeta struct {
		_          struct{}      `cbor:",toarray"`
		Key        types.Address `json:"key"`
		IsSigner   bool          `json:"isSigner"`
		IsWritable bool          `json:"isWritable"`
	}

	/*
		Transaction is a call of a program. Signer flags of the accounts are taken
		as given, verifying the signatures is the job of whoever submits the
		transaction to the executor.
	*/
	Transaction struct {
		_         struct{}      `cbor:",toarray"`
		ProgramID types.Address `json:"programId"`
		Accounts  []AccountMeta `json:"accounts"`
		Data      hexutil.Bytes `json:"data"`
	}
)

type Executor struct {
	mu       sync.Mutex
	store    state.Store
	programs map[types.Address]Program
}

func NewExecutor(store state.Store, programs ...Program) (*Executor, error) {
	if store == nil {
		return nil, errors.New("record store is nil")
	}
	e := &Executor{store: store, programs: make(map[types.Address]Program, len(programs))}
	for _, p := range programs {
		id := p.ProgramID()
		if id == types.SystemProgramID {
			return nil, fmt.Errorf("program ID %s is reserved for the system program", id)
		}
		if _, ok := e.programs[id]; ok {
			return nil, fmt.Errorf("program %s registered more than once", id)
		}
		e.programs[id] = p
	}
	return e, nil
}

/*
Execute runs the transaction and commits the mutated records and the events
of the program. Transactions are executed one at a time.
*/
func (e *Executor) Execute(ctx context.Context, tx *Transaction) ([]*types.Event, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: transaction is nil", ErrInvalidTransaction)
	}
	program, ok := e.programs[tx.ProgramID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, tx.ProgramID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := e.load(tx)
	if err != nil {
		return nil, err
	}
	events, err := program.Process(sess.refs, tx.Data)
	if err != nil {
		return nil, err
	}
	if err := sess.verify(tx.ProgramID); err != nil {
		log.Errorf("program %s: %v", tx.ProgramID, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.store.Commit(sess.modifiable(), events); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	log.Debugw("transaction committed", "program", tx.ProgramID, "accounts", len(tx.Accounts), "events", len(events))
	return events, nil
}

// session holds the records of one transaction, one *Record per distinct key.
type session struct {
	keys     []types.Address
	before   map[types.Address]*types.Record
	current  map[types.Address]*types.Record
	writable map[types.Address]bool
	refs     []*types.AccountRef
}

func (e *Executor) load(tx *Transaction) (*session, error) {
	s := &session{
		before:   make(map[types.Address]*types.Record, len(tx.Accounts)),
		current:  make(map[types.Address]*types.Record, len(tx.Accounts)),
		writable: make(map[types.Address]bool, len(tx.Accounts)),
		refs:     make([]*types.AccountRef, 0, len(tx.Accounts)),
	}
	for _, meta := range tx.Accounts {
		rec, ok := s.current[meta.Key]
		if !ok {
			var err error
			if rec, err = e.store.Get(meta.Key); err != nil {
				if !errors.Is(err, state.ErrRecordNotFound) {
					return nil, fmt.Errorf("loading record %s: %w", meta.Key, err)
				}
				rec = types.NewRecord(meta.Key, types.SystemProgramID, 0, 0)
			}
			s.keys = append(s.keys, meta.Key)
			s.before[meta.Key] = rec.Copy()
			s.current[meta.Key] = rec
		}
		s.writable[meta.Key] = s.writable[meta.Key] || meta.IsWritable
		s.refs = append(s.refs, &types.AccountRef{
			Key:        meta.Key,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Record:     rec,
		})
	}
	return s, nil
}

/*
verify checks the records after the program returned:
  - owner and data length of a record never change;
  - records not marked writable are unchanged;
  - only records owned by the program may have data changed or balance debited;
  - the sum of the balances is the same as before.
*/
func (s *session) verify(programID types.Address) error {
	balance := func(records map[types.Address]*types.Record) (uint64, error) {
		sum, ok := util.AddUint64(util.TransformSlice(s.keys, func(k types.Address) uint64 { return records[k].Balance })...)
		if !ok {
			return 0, fmt.Errorf("%w: balance sum overflows", ErrRuntimeViolation)
		}
		return sum, nil
	}

	for _, key := range s.keys {
		before, after := s.before[key], s.current[key]
		switch {
		case after.Address != key:
			return fmt.Errorf("%w: address of record %s changed", ErrRuntimeViolation, key)
		case after.Owner != before.Owner:
			return fmt.Errorf("%w: owner of record %s changed", ErrRuntimeViolation, key)
		case len(after.Data) != len(before.Data):
			return fmt.Errorf("%w: data length of record %s changed", ErrRuntimeViolation, key)
		case !s.writable[key] && !after.Equal(before):
			return fmt.Errorf("%w: read-only record %s modified", ErrRuntimeViolation, key)
		case before.Owner != programID && (after.Balance < before.Balance || !bytes.Equal(after.Data, before.Data)):
			return fmt.Errorf("%w: record %s is not owned by the program", ErrRuntimeViolation, key)
		}
	}

	sumBefore, err := balance(s.before)
	if err != nil {
		return err
	}
	sumAfter, err := balance(s.current)
	if err != nil {
		return err
	}
	if sumBefore != sumAfter {
		return fmt.Errorf("%w: total balance %d before, %d after", ErrRuntimeViolation, sumBefore, sumAfter)
	}
	return nil
}

// modifiable returns the records which may have been modified, in the order of first reference.
func (s *session) modifiable() []*types.Record {
	var res []*types.Record
	for _, key := range s.keys {
		if s.writable[key] {
			res = append(res, s.current[key])
		}
	}
	return res
}
