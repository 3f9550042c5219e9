// Package chain defines the narrow, read-only view of the host chain that
// the infinity node registry depends on. Everything here is an interface
// and a handful of plain value types; block lookup, transaction fetch,
// script solving, and address encoding are implemented by the host and are
// out of scope for this module.
package chain

import (
	"github.com/libsv/go-bt/v2/bscript"
	"github.com/libsv/go-bt/v2/chainhash"
)

// Outpoint identifies a single transaction output: the permanent identity
// of a burn. Outpoints order lexicographically by txid bytes, then by
// vout index — the tie-break used throughout rank assignment.
type Outpoint struct {
	TxID chainhash.Hash
	Vout uint32
}

// Less reports whether o sorts before other under the canonical ordering
// used for rank tie-breaks.
func (o Outpoint) Less(other Outpoint) bool {
	cmp := compareHashBytes(o.TxID, other.TxID)
	if cmp != 0 {
		return cmp < 0
	}
	return o.Vout < other.Vout
}

func compareHashBytes(a, b chainhash.Hash) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (o Outpoint) String() string {
	return o.TxID.String() + ":" + itoa(o.Vout)
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// TxOutput is the minimal shape of an output this module reads: value and
// locking script.
type TxOutput struct {
	Satoshis      uint64
	LockingScript *bscript.Script
}

// TxInput is the minimal shape of an input this module reads: the outpoint
// it spends.
type TxInput struct {
	PreviousTxID chainhash.Hash
	PreviousVout uint32
}

// Transaction is the minimal shape of a transaction this module reads.
type Transaction struct {
	TxID      chainhash.Hash
	Inputs    []*TxInput
	Outputs   []*TxOutput
	Coinbase  bool
}

// BlockIndex is the minimal shape of a block's position in the chain: its
// height and its predecessor, enough to walk backward without reading full
// block contents until needed.
type BlockIndex struct {
	Hash   chainhash.Hash
	Height int32
	Prev   *chainhash.Hash
}

// Block is the minimal shape of a block's contents this module reads.
type Block struct {
	Index        BlockIndex
	Transactions []*Transaction
}

// ScriptSolution is the result of solving an output's locking script: its
// type tag and the candidate hash160 solutions (usually one).
type ScriptSolution struct {
	Type      string
	Solutions [][]byte
}
