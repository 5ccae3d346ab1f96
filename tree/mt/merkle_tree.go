package mt

import (
	"crypto"
	"errors"
)

var ErrIndexOutOfBounds = errors.New("merkle tree data index out of bounds")

type (
	MerkleTree struct {
		root       *node
		dataLength int // number of leaves
	}

	// Data is the leaf of the tree.
	Data interface {
		Hash(hashAlgorithm crypto.Hash) ([]byte, error)
	}

	// PathItem helper struct for proof extraction, contains Hash and Direction from parent node.
	PathItem struct {
		Hash          []byte
		DirectionLeft bool // true - left from parent, false - right from parent
	}

	node struct {
		left  *node
		right *node
		hash  []byte
	}
)

// New creates a new canonical Merkle Tree.
func New(hashAlgorithm crypto.Hash, data []Data) (*MerkleTree, error) {
	if len(data) == 0 {
		return &MerkleTree{root: nil, dataLength: 0}, nil
	}
	root, err := createMerkleTree(data, hashAlgorithm)
	if err != nil {
		return nil, err
	}
	return &MerkleTree{root: root, dataLength: len(data)}, nil
}

// EvalMerklePath returns root hash calculated from the given leaf and path items
func EvalMerklePath(merklePath []*PathItem, leaf Data, hashAlgorithm crypto.Hash) ([]byte, error) {
	h, err := leaf.Hash(hashAlgorithm)
	if err != nil {
		return nil, err
	}
	for _, item := range merklePath {
		hasher := hashAlgorithm.New()
		if item.DirectionLeft {
			hasher.Write(h)
			hasher.Write(item.Hash)
		} else {
			hasher.Write(item.Hash)
			hasher.Write(h)
		}
		h = hasher.Sum(nil)
	}
	return h, nil
}

// GetRootHash returns the root Hash of the Merkle Tree, nil for empty tree.
func (s *MerkleTree) GetRootHash() []byte {
	if s.root == nil {
		return nil
	}
	return s.root.hash
}

// GetMerklePath extracts the merkle path from the given leaf to root.
func (s *MerkleTree) GetMerklePath(leafIdx int) ([]*PathItem, error) {
	if leafIdx < 0 || leafIdx >= s.dataLength {
		return nil, ErrIndexOutOfBounds
	}
	var z []*PathItem
	var curr = s.root
	b := s.dataLength
	m := leafIdx
	for b > 1 {
		n := hibit(b - 1)
		if m < n {
			z = append([]*PathItem{{DirectionLeft: true, Hash: curr.right.hash}}, z...)
			curr = curr.left
			b = n
		} else {
			z = append([]*PathItem{{DirectionLeft: false, Hash: curr.left.hash}}, z...)
			curr = curr.right
			b = b - n
			m = m - n
		}
	}
	return z, nil
}

func createMerkleTree(data []Data, hashAlgorithm crypto.Hash) (*node, error) {
	if len(data) == 1 {
		h, err := data[0].Hash(hashAlgorithm)
		if err != nil {
			return nil, err
		}
		return &node{hash: h}, nil
	}
	n := hibit(len(data) - 1)
	left, err := createMerkleTree(data[:n], hashAlgorithm)
	if err != nil {
		return nil, err
	}
	right, err := createMerkleTree(data[n:], hashAlgorithm)
	if err != nil {
		return nil, err
	}
	hasher := hashAlgorithm.New()
	hasher.Write(left.hash)
	hasher.Write(right.hash)
	return &node{left: left, right: right, hash: hasher.Sum(nil)}, nil
}

// hibit floating-point-free equivalent of 2^floor(log2(n)), returns 0 for n = 0.
func hibit(n int) int {
	if n < 0 {
		panic("hibit function input cannot be negative (merkle tree input data length cannot be zero)")
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n - (n >> 1)
}
