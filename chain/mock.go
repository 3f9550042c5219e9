package chain

import (
	"context"

	"github.com/libsv/go-bt/v2/bscript"
	"github.com/libsv/go-bt/v2/chainhash"

	"github.com/uhlik-sinovate-development/SIN-core/errors"
)

var _ View = (*MockView)(nil)

// MockView is an in-memory chain fixture for tests. It holds an ordered
// block list since the scanner must walk backward through real history.
// Block hashes are supplied by the caller and must be unique.
type MockView struct {
	blocks     []*Block
	byHash     map[chainhash.Hash]*Block
	txIndex    map[chainhash.Hash]chainhash.Hash // txid -> containing block hash
	params     ConsensusParams
	rewards    map[int32]int64 // tier -> flat reward amount for every height
}

// NewMockView builds an empty fixture chain using the given consensus
// parameters.
func NewMockView(params ConsensusParams) *MockView {
	return &MockView{
		byHash:  make(map[chainhash.Hash]*Block),
		txIndex: make(map[chainhash.Hash]chainhash.Hash),
		params:  params,
		rewards: make(map[int32]int64),
	}
}

// SetReward fixes the flat per-block reward for a tier, used by RewardAt.
func (m *MockView) SetReward(tier int32, amount int64) {
	m.rewards[tier] = amount
}

// AppendBlock appends a new tip block built from the given transactions,
// wiring prev/height automatically.
func (m *MockView) AppendBlock(blockHash chainhash.Hash, txs []*Transaction) *Block {
	height := int32(0)
	var prev *chainhash.Hash

	if n := len(m.blocks); n > 0 {
		tip := m.blocks[n-1]
		height = tip.Index.Height + 1
		h := tip.Index.Hash
		prev = &h
	}

	b := &Block{
		Index: BlockIndex{
			Hash:   blockHash,
			Height: height,
			Prev:   prev,
		},
		Transactions: txs,
	}

	m.blocks = append(m.blocks, b)
	m.byHash[blockHash] = b

	for _, tx := range txs {
		m.txIndex[tx.TxID] = blockHash
	}

	return b
}

// Height returns the height of the current tip, or false if the fixture
// has no blocks yet.
func (m *MockView) Height() (int32, bool) {
	if len(m.blocks) == 0 {
		return 0, false
	}
	return m.blocks[len(m.blocks)-1].Index.Height, true
}

func (m *MockView) BlockHashAtHeight(_ context.Context, height int32) (chainhash.Hash, bool, error) {
	if height < 0 || int(height) >= len(m.blocks) {
		return chainhash.Hash{}, false, nil
	}
	return m.blocks[height].Index.Hash, true, nil
}

func (m *MockView) BlockIndexByHash(_ context.Context, hash chainhash.Hash) (*BlockIndex, error) {
	b, ok := m.byHash[hash]
	if !ok {
		return nil, errors.NewMissingChainDataError("unknown block hash %s", hash.String())
	}
	idx := b.Index
	return &idx, nil
}

func (m *MockView) ReadBlock(_ context.Context, index *BlockIndex) (*Block, error) {
	b, ok := m.byHash[index.Hash]
	if !ok {
		return nil, errors.NewMissingChainDataError("unknown block hash %s", index.Hash.String())
	}
	return b, nil
}

func (m *MockView) GetTransaction(_ context.Context, txid chainhash.Hash) (*Transaction, chainhash.Hash, error) {
	blockHash, ok := m.txIndex[txid]
	if !ok {
		return nil, chainhash.Hash{}, errors.NewMissingChainDataError("unknown tx %s", txid.String())
	}

	b := m.byHash[blockHash]
	for _, tx := range b.Transactions {
		if tx.TxID == txid {
			return tx, blockHash, nil
		}
	}

	return nil, chainhash.Hash{}, errors.NewMissingChainDataError("tx %s indexed but not found in block", txid.String())
}

// SolveScript implements the subset this fixture needs: P2PKH scripts
// resolve to their single hash160, everything else is reported unsolved.
func (m *MockView) SolveScript(script *bscript.Script) (ScriptSolution, error) {
	if script == nil {
		return ScriptSolution{Type: "nonstandard"}, nil
	}

	s := *script

	if !s.IsP2PKH() {
		return ScriptSolution{Type: "nonstandard"}, nil
	}

	// A P2PKH script is OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG.
	if len(s) < 25 {
		return ScriptSolution{}, errors.NewMalformedBurnError("p2pkh script too short")
	}

	hash160 := make([]byte, 20)
	copy(hash160, s[3:23])

	return ScriptSolution{Type: "pubkeyhash", Solutions: [][]byte{hash160}}, nil
}

func (m *MockView) EncodeDestinationFromHash160(hash160 []byte) (string, error) {
	const hexDigits = "0123456789abcdef"

	buf := make([]byte, len(hash160)*2)
	for i, b := range hash160 {
		buf[i*2] = hexDigits[b>>4]
		buf[i*2+1] = hexDigits[b&0x0f]
	}

	return "addr:" + string(buf), nil
}

func (m *MockView) RewardAt(_ int32, tier int32) (int64, error) {
	if v, ok := m.rewards[tier]; ok {
		return v, nil
	}
	return 0, nil
}

func (m *MockView) Params() ConsensusParams {
	return m.params
}
