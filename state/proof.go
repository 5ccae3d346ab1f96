package state

import (
	"bytes"
	"crypto"
	"errors"
	"fmt"
	"slices"

	"github.com/crowdfund-org/crowdfund-go-base/tree/mt"
	"github.com/crowdfund-org/crowdfund-go-base/types"
	"github.com/crowdfund-org/crowdfund-go-base/util"
)

var ErrInvalidProof = errors.New("state: proof does not match the root hash")

// InclusionProof proves that the Record is part of the state with the given Root.
type InclusionProof struct {
	Record *types.Record
	Path   []*mt.PathItem
	Root   []byte
}

/*
Prove builds the proof of inclusion of the record with given key into the
current state, see RootHash.
*/
func Prove(s Store, key types.Address, algorithm crypto.Hash) (*InclusionProof, error) {
	records, err := s.Records()
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	idx := slices.IndexFunc(records, func(r *types.Record) bool { return r.Address == key })
	if idx < 0 {
		return nil, fmt.Errorf("record %s: %w", key, ErrRecordNotFound)
	}
	tree, err := mt.New(algorithm, util.TransformSlice(records, func(r *types.Record) mt.Data { return r }))
	if err != nil {
		return nil, fmt.Errorf("building state tree: %w", err)
	}
	path, err := tree.GetMerklePath(idx)
	if err != nil {
		return nil, fmt.Errorf("extracting merkle path: %w", err)
	}
	return &InclusionProof{Record: records[idx], Path: path, Root: tree.GetRootHash()}, nil
}

// Verify checks that the record and the path evaluate to the root of the proof.
func (p *InclusionProof) Verify(algorithm crypto.Hash) error {
	if p == nil || p.Record == nil {
		return fmt.Errorf("%w: record is missing", ErrInvalidProof)
	}
	root, err := mt.EvalMerklePath(p.Path, p.Record, algorithm)
	if err != nil {
		return fmt.Errorf("evaluating merkle path: %w", err)
	}
	if !bytes.Equal(root, p.Root) {
		return ErrInvalidProof
	}
	return nil
}
