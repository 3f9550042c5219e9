package chain

import (
	"context"

	"github.com/libsv/go-bt/v2/bscript"
	"github.com/libsv/go-bt/v2/chainhash"
)

// ConsensusParams is the set of chain-agreed constants the scheduler and
// scanner must never diverge on. The host owns the canonical values; this
// module only reads them.
type ConsensusParams struct {
	InfinityBeginHeight    int32
	GenesisStatementHeight int32
	MaturedLimit           int32
	LifetimeBlocks         int32
	Denom                  map[int32]int64
	Limit                  map[int32]int32
	SinkAddress            string
}

// View is the read-only chain surface the registry depends on. A
// production host backs this with its own block/tx store and script
// engine; tests back it with MockView.
type View interface {
	// BlockHashAtHeight resolves the canonical block hash at a height, or
	// ok=false if the height is beyond the current tip or unknown.
	BlockHashAtHeight(ctx context.Context, height int32) (hash chainhash.Hash, ok bool, err error)

	// BlockIndexByHash returns the height/predecessor for a known block hash.
	BlockIndexByHash(ctx context.Context, hash chainhash.Hash) (*BlockIndex, error)

	// ReadBlock returns the full transaction list for a block.
	ReadBlock(ctx context.Context, index *BlockIndex) (*Block, error)

	// GetTransaction resolves a txid to its transaction and the hash of the
	// block that contains it.
	GetTransaction(ctx context.Context, txid chainhash.Hash) (*Transaction, chainhash.Hash, error)

	// SolveScript interprets a locking script, returning its type and
	// hash160 solution set.
	SolveScript(script *bscript.Script) (ScriptSolution, error)

	// EncodeDestinationFromHash160 renders a hash160 as the chain's address
	// string.
	EncodeDestinationFromHash160(hash160 []byte) (string, error)

	// RewardAt returns the exact coinbase payment amount expected for the
	// given tier at the given height.
	RewardAt(height int32, tier int32) (int64, error)

	// Params returns the chain's consensus parameters.
	Params() ConsensusParams
}
