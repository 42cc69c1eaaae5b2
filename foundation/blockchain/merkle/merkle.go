// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides an implementation of a merkle tree for summarizing
// the transactions of a block into a single root hash.
//
// Hashes are carried as hex strings and a parent is the hash of its children's
// hex strings joined as text. When a level has an odd number of nodes the last
// node is paired with itself. A tree with no values has the root "0" and a
// tree with one value has that value's hash as its root.
package merkle

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNotFound is returned when a value or index is not part of the tree.
var ErrNotFound = errors.New("unable to find data in tree")

// Order values returned with a proof. OrderLeft means the proof hash is
// concatenated before the running hash, OrderRight means after.
const (
	OrderLeft  int64 = 0
	OrderRight int64 = 1
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Hash() string
	Equals(other T) bool
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root         *Node[T]
	Leafs        []*Node[T]
	MerkleRoot   string
	hashStrategy func() hash.Hash
}

// WithHashStrategy is used to change the default hash strategy of using sha256
// when combining child hashes into a parent.
func WithHashStrategy[T Hashable[T]](hashStrategy func() hash.Hash) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface.
func NewTree[T Hashable[T]](values []T, options ...func(t *Tree[T])) *Tree[T] {
	t := Tree[T]{
		hashStrategy: sha256.New,
	}

	for _, option := range options {
		option(&t)
	}

	t.Generate(values)

	return &t
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch.
func (t *Tree[T]) Generate(values []T) {
	if len(values) == 0 {
		t.Root = nil
		t.Leafs = nil
		t.MerkleRoot = digest.Sentinel
		return
	}

	leafs := make([]*Node[T], 0, len(values)+1)
	for _, value := range values {
		leafs = append(leafs, &Node[T]{
			Hash:  value.Hash(),
			Value: value,
			leaf:  true,
			Tree:  t,
		})
	}

	// A single leaf is its own root, there is nothing to pair it with.
	if len(leafs) == 1 {
		t.Root = leafs[0]
		t.Leafs = leafs
		t.MerkleRoot = leafs[0].Hash
		return
	}

	if len(leafs)%2 == 1 {
		last := leafs[len(leafs)-1]
		leafs = append(leafs, &Node[T]{
			Hash:  last.Hash,
			Value: last.Value,
			leaf:  true,
			dup:   true,
			Tree:  t,
		})
	}

	root := buildIntermediate(leafs, t)

	t.Root = root
	t.Leafs = leafs
	t.MerkleRoot = root.Hash
}

// Rebuild is a helper function that will rebuild the tree reusing only the
// data that it currently holds in the leaves.
func (t *Tree[T]) Rebuild() {
	t.Generate(t.Values())
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving a value is in the tree. See ProofAt.
func (t *Tree[T]) Proof(data T) ([]string, []int64, error) {
	for i, node := range t.Leafs {
		if node.dup || !node.Value.Equals(data) {
			continue
		}

		return t.ProofAt(i)
	}

	return nil, nil, ErrNotFound
}

// ProofAt returns the set of hashes and the order of concatenating those
// hashes for proving the value at the specified index is in the tree.
//
// Hash the data in question and know the merkle root.
// Given proof = [p0, p1, p2] and proof_order = [0, 1, 1]:
//
//	h = hash(p0 + leaf)  -- Order 0 says proof comes first.
//	h = hash(h + p1)     -- Order 1 says proof comes second.
//	h = hash(h + p2)
//
// The calculated h should match the merkle root. A tree with a single value
// returns an empty proof since the leaf hash is the root.
func (t *Tree[T]) ProofAt(index int) ([]string, []int64, error) {
	if index < 0 || index >= len(t.Leafs) || t.Leafs[index].dup {
		return nil, nil, ErrNotFound
	}

	node := t.Leafs[index]

	merkleProof := []string{}
	order := []int64{}
	for parent := node.Parent; parent != nil; parent = parent.Parent {
		if parent.Left == node {
			merkleProof = append(merkleProof, parent.Right.Hash)
			order = append(order, OrderRight)
		} else {
			merkleProof = append(merkleProof, parent.Left.Hash)
			order = append(order, OrderLeft)
		}
		node = parent
	}

	return merkleProof, order, nil
}

// Verify validates the hashes at each level of the tree and returns an error
// if the resulting hash at the root of the tree does not match the root hash.
func (t *Tree[T]) Verify() error {
	if t.Root == nil {
		if t.MerkleRoot != digest.Sentinel {
			return errors.New("root hash invalid for empty tree")
		}
		return nil
	}

	if t.Root.verify() != t.MerkleRoot {
		return errors.New("root hash invalid")
	}

	return nil
}

// VerifyData indicates whether a given piece of data is in the tree and if the
// hashes are valid for that data. Returns nil if the merkle root is equivalent
// to the merkle root calculated on the critical path for a given piece of data.
func (t *Tree[T]) VerifyData(data T) error {
	for _, node := range t.Leafs {
		if node.dup || !node.Value.Equals(data) {
			continue
		}

		if node.Hash != data.Hash() {
			return errors.New("leaf hash does not match the data")
		}

		for parent := node.Parent; parent != nil; parent = parent.Parent {
			if t.combine(parent.Left.CalculateHash(), parent.Right.CalculateHash()) != parent.Hash {
				return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
			}
		}

		return nil
	}

	return ErrNotFound
}

// Values returns the values stored in the tree in their original order.
func (t *Tree[T]) Values() []T {
	values := make([]T, 0, len(t.Leafs))
	for _, node := range t.Leafs {
		if node.dup {
			continue
		}
		values = append(values, node.Value)
	}

	return values
}

// Len returns the number of values stored in the tree.
func (t *Tree[T]) Len() int {
	n := len(t.Leafs)
	if n > 0 && t.Leafs[n-1].dup {
		n--
	}

	return n
}

// String returns a string representation of the tree. Only leaf nodes are
// included in the output.
func (t *Tree[T]) String() string {
	s := ""

	for _, l := range t.Leafs {
		s += fmt.Sprint(l)
		s += "\n"
	}

	return s
}

// MarshalText implements the TextMarshaler interface and produces a panic
// if anyone tries to marshal the Merkle tree. I don't want this to happen.
// Use the Values function to return a slice that can be marshaled.
func (t *Tree[T]) MarshalText() (text []byte, err error) {
	panic("do not marshal the merkle tree, use Values")
}

// combine hashes the two child hashes joined as hex text.
func (t *Tree[T]) combine(left string, right string) string {
	h := t.hashStrategy()
	h.Write([]byte(left + right))
	return common.Bytes2Hex(h.Sum(nil))
}

// =============================================================================

// VerifyProof checks a proof produced by ProofAt against a merkle root built
// with the default sha256 strategy.
func VerifyProof(leafHash string, proof []string, order []int64, root string) bool {
	if len(proof) != len(order) {
		return false
	}

	h := leafHash
	for i, p := range proof {
		switch order[i] {
		case OrderLeft:
			h = digest.Concat(p, h)
		case OrderRight:
			h = digest.Concat(h, p)
		default:
			return false
		}
	}

	return h == root
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
type Node[T Hashable[T]] struct {
	Tree   *Tree[T]
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   string
	Value  T
	leaf   bool
	dup    bool
}

// verify walks down the tree until hitting a leaf, calculating the hash at
// each level and returning the resulting hash of the node.
func (n *Node[T]) verify() string {
	if n.leaf {
		return n.Value.Hash()
	}

	return n.Tree.combine(n.Left.verify(), n.Right.verify())
}

// CalculateHash is a helper function that calculates the hash of the node.
func (n *Node[T]) CalculateHash() string {
	if n.leaf {
		return n.Value.Hash()
	}

	return n.Tree.combine(n.Left.Hash, n.Right.Hash)
}

// String returns a string representation of the node.
func (n *Node[T]) String() string {
	return fmt.Sprintf("%t %t %v %v", n.leaf, n.dup, n.Hash, n.Value)
}

// =============================================================================

// buildIntermediate is a helper function that for a given list of nodes,
// constructs the intermediate and root levels of the tree. Returns the resulting
// root node of the tree. An odd node at the end of a level is paired with
// itself.
func buildIntermediate[T Hashable[T]](nl []*Node[T], t *Tree[T]) *Node[T] {
	nodes := make([]*Node[T], 0, (len(nl)+1)/2)

	for i := 0; i < len(nl); i += 2 {
		left, right := i, i+1
		if i+1 == len(nl) {
			right = i
		}

		n := Node[T]{
			Left:  nl[left],
			Right: nl[right],
			Hash:  t.combine(nl[left].Hash, nl[right].Hash),
			Tree:  t,
		}

		nodes = append(nodes, &n)
		nl[left].Parent = &n
		nl[right].Parent = &n
	}

	if len(nodes) == 1 {
		return nodes[0]
	}

	return buildIntermediate(nodes, t)
}
