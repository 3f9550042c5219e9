package infinitynode

import (
	"context"
	"fmt"
	"testing"

	"github.com/libsv/go-bt/v2/bscript"
	"github.com/libsv/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/errors"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
	"github.com/uhlik-sinovate-development/SIN-core/ulogger"
)

func testHash(label string) chainhash.Hash {
	var h chainhash.Hash
	copy(h[:], label)
	return h
}

func p2pkhScript(owner byte) *bscript.Script {
	s := bscript.Script{0x76, 0xa9, 0x14, owner, owner, owner, owner, owner, owner, owner, owner, owner, owner, owner, owner, owner, owner, owner, owner, owner, owner, 0x88, 0xac}
	return &s
}

// newMockChain builds an empty fixture chain that pays a flat reward of 1
// for every tier; tests append their own blocks to it.
func newMockChain(t *testing.T, params chain.ConsensusParams) *chain.MockView {
	t.Helper()

	view := chain.NewMockView(params)
	view.SetReward(int32(settings.TierLIL), 1)
	view.SetReward(int32(settings.TierMID), 1)
	view.SetReward(int32(settings.TierBIG), 1)

	return view
}

// appendFundingTx appends a block holding a non-burn transaction paying
// owner and returns that transaction, used as the "first input's previous
// output" a burn spends from.
func appendFundingTx(view *chain.MockView, txidLabel string, owner byte) *chain.Transaction {
	tx := &chain.Transaction{
		TxID: testHash(txidLabel),
		Outputs: []*chain.TxOutput{
			{Satoshis: 1000 * uint64(settings.Coin), LockingScript: p2pkhScript(owner)},
		},
	}
	view.AppendBlock(testHash(txidLabel+"-block"), []*chain.Transaction{tx})
	return tx
}

func appendBurnBlock(view *chain.MockView, blockLabel string, burnTxIDLabel string, fundingTx *chain.Transaction, sinkOwner byte, value uint64) *chain.Transaction {
	burnTx := &chain.Transaction{
		TxID: testHash(burnTxIDLabel),
		Inputs: []*chain.TxInput{
			{PreviousTxID: fundingTx.TxID, PreviousVout: 0},
		},
		Outputs: []*chain.TxOutput{
			{Satoshis: value, LockingScript: p2pkhScript(sinkOwner)},
		},
	}
	view.AppendBlock(testHash(blockLabel), []*chain.Transaction{burnTx})
	return burnTx
}

// appendEmptyBlock appends a block holding only an empty coinbase. The label
// is suffixed with the new block's height so that repeated calls with the
// same label still produce distinct block hashes.
func appendEmptyBlock(view *chain.MockView, label string) {
	height := int32(0)
	if tip, ok := view.Height(); ok {
		height = tip + 1
	}
	label = fmt.Sprintf("%s-%d", label, height)

	view.AppendBlock(testHash(label), []*chain.Transaction{
		{TxID: testHash(label + "-coinbase"), Coinbase: true},
	})
}

// sinkOwnerByteAddress derives the address that a P2PKH script built from
// owner encodes to, given this fixture's address-encoding scheme (hex of
// the hash160, prefixed "addr:").
func sinkOwnerByteAddress(owner byte) string {
	const hexDigits = "0123456789abcdef"
	hash160 := make([]byte, 20)
	for i := range hash160 {
		hash160[i] = owner
	}
	buf := make([]byte, 40)
	for i, b := range hash160 {
		buf[i*2] = hexDigits[b>>4]
		buf[i*2+1] = hexDigits[b&0x0f]
	}
	return "addr:" + string(buf)
}

func testParamsWithSink(owner byte) chain.ConsensusParams {
	p := testParams()
	p.SinkAddress = sinkOwnerByteAddress(owner)
	return p
}

// Scenario 1: a single LIL burn at height 101, matured at tip 110,
// non-matured at tip 105.
func TestScanner_Scenario1_SingleLILBurn(t *testing.T) {
	const sinkOwner = 0xAA
	params := testParamsWithSink(sinkOwner)

	view := newMockChain(t, params)

	// Blocks 0..99 pad the chain up to genesis height 100.
	for i := 0; i < 100; i++ {
		appendEmptyBlock(view, "pad")
	}

	fund := appendFundingTx(view, "fund-A1", 0x01)
	burn := appendBurnBlock(view, "block-101", "burn-1", fund, sinkOwner, 100000*uint64(settings.Coin))
	_ = burn

	for i := 0; i < 9; i++ {
		appendEmptyBlock(view, "tail")
	}

	registry := New()
	logger := ulogger.New("test")
	scanner := NewScanner(registry, view, logger)

	require.NoError(t, scanner.BuildList(context.Background(), 110, params.InfinityBeginHeight))

	outp := chain.Outpoint{TxID: testHash("burn-1"), Vout: 0}
	rec, ok := registry.Find(outp)
	require.True(t, ok, "LIL burn at height 101 must be matured by tip 110")
	assert.Equal(t, int32(101), rec.CreatedHeight)
	assert.Equal(t, int32(101+262800), rec.ExpireHeight)
	assert.Equal(t, settings.TierLIL, rec.Tier)

	registry2 := New()
	scanner2 := NewScanner(registry2, view, logger)
	require.NoError(t, scanner2.BuildList(context.Background(), 105, params.InfinityBeginHeight))

	_, ok = registry2.Find(outp)
	assert.False(t, ok, "at tip 105 the same burn is still within the maturity horizon")
}

// Scenario 6: a burn one base unit below the LIL floor is rejected; at
// exactly the floor it is registered.
func TestScanner_Scenario6_DenominationBoundary(t *testing.T) {
	const sinkOwner = 0xBB
	params := testParamsWithSink(sinkOwner)

	view := newMockChain(t, params)
	for i := 0; i < 100; i++ {
		appendEmptyBlock(view, "pad6")
	}

	fundLow := appendFundingTx(view, "fund-low", 0x02)
	appendBurnBlock(view, "block-low", "burn-low", fundLow, sinkOwner, 99999*uint64(settings.Coin))

	fundExact := appendFundingTx(view, "fund-exact", 0x03)
	appendBurnBlock(view, "block-exact", "burn-exact", fundExact, sinkOwner, 100000*uint64(settings.Coin))

	for i := 0; i < 9; i++ {
		appendEmptyBlock(view, "tail6")
	}

	registry := New()
	scanner := NewScanner(registry, view, ulogger.New("test"))

	require.NoError(t, scanner.BuildList(context.Background(), view.Params().InfinityBeginHeight+11, params.InfinityBeginHeight))

	_, ok := registry.Find(chain.Outpoint{TxID: testHash("burn-low"), Vout: 0})
	assert.False(t, ok, "a burn one coin below the LIL floor must not be registered")

	_, ok = registry.Find(chain.Outpoint{TxID: testHash("burn-exact"), Vout: 0})
	assert.True(t, ok, "a burn exactly at the LIL floor must be registered")
}

// Maturity invariant (universal property): every matured record satisfies
// createdHeight <= tipHeight - MATURED_LIMIT.
func TestScanner_MaturityInvariant(t *testing.T) {
	const sinkOwner = 0xCC
	params := testParamsWithSink(sinkOwner)

	view := newMockChain(t, params)
	for i := 0; i < 100; i++ {
		appendEmptyBlock(view, "padm")
	}

	fund := appendFundingTx(view, "fund-m", 0x04)
	appendBurnBlock(view, "block-m", "burn-m", fund, sinkOwner, 500000*uint64(settings.Coin))

	for i := 0; i < 20; i++ {
		appendEmptyBlock(view, "tailm")
	}

	registry := New()
	scanner := NewScanner(registry, view, ulogger.New("test"))

	tipHeight := int32(100 + 1 + 20 - 1)

	require.NoError(t, scanner.BuildList(context.Background(), tipHeight, params.InfinityBeginHeight))

	for _, rec := range registry.FullMap() {
		assert.LessOrEqual(t, rec.CreatedHeight, tipHeight-params.MaturedLimit)
	}
}

// Scenario 5: a coinbase at height 150 pays exactly reward(150, LIL) to the
// funding script backing a matured LIL record; after a scan covering 150
// that record's lastPaidHeight advances to 150.
func TestScanner_Scenario5_CoinbasePaysMaturedPayee(t *testing.T) {
	const sinkOwner = 0xEE
	const fundOwner = 0x06
	params := testParamsWithSink(sinkOwner)

	view := newMockChain(t, params)
	view.SetReward(int32(settings.TierLIL), 42*int64(settings.Coin))

	for i := 0; i < 100; i++ {
		appendEmptyBlock(view, "pad5")
	}

	fund := appendFundingTx(view, "fund-5", fundOwner)
	appendBurnBlock(view, "block-101-5", "burn-5", fund, sinkOwner, 100000*uint64(settings.Coin))

	// Pad forward to height 149, then a coinbase block at height 150 that
	// pays the funding script's locking script exactly the LIL reward.
	for i := 0; i < 48; i++ {
		appendEmptyBlock(view, "mid5")
	}

	view.AppendBlock(testHash("block-150"), []*chain.Transaction{
		{
			TxID:     testHash("coinbase-150"),
			Coinbase: true,
			Outputs: []*chain.TxOutput{
				{Satoshis: uint64(42 * int64(settings.Coin)), LockingScript: p2pkhScript(fundOwner)},
			},
		},
	})

	registry := New()
	scanner := NewScanner(registry, view, ulogger.New("test"))

	require.NoError(t, scanner.BuildList(context.Background(), 150, params.InfinityBeginHeight))

	rec, ok := registry.Find(chain.Outpoint{TxID: testHash("burn-5"), Vout: 0})
	require.True(t, ok, "LIL burn at height 101 must be matured by tip 150")
	assert.Equal(t, int32(150), rec.LastPaidHeight, "coinbase at height 150 paying the funding script must advance lastPaidHeight")
}

// A burn whose first input spends a transaction absent from the view
// aborts the scan with a MissingChainData error instead of being skipped
// like a malformed burn: the caller must retry rather than lose the
// candidate silently.
func TestScanner_AbortsOnMissingFundingTx(t *testing.T) {
	const sinkOwner = 0xFF
	params := testParamsWithSink(sinkOwner)

	view := newMockChain(t, params)
	for i := 0; i < 100; i++ {
		appendEmptyBlock(view, "padu")
	}

	ghostFundingTxID := testHash("fund-never-appended")
	burnTx := &chain.Transaction{
		TxID: testHash("burn-unresolvable"),
		Inputs: []*chain.TxInput{
			{PreviousTxID: ghostFundingTxID, PreviousVout: 0},
		},
		Outputs: []*chain.TxOutput{
			{Satoshis: 100000 * uint64(settings.Coin), LockingScript: p2pkhScript(sinkOwner)},
		},
	}
	view.AppendBlock(testHash("block-unresolvable"), []*chain.Transaction{burnTx})

	// The burn sits at height 100; ten tail blocks bring the tip to 110.
	for i := 0; i < 10; i++ {
		appendEmptyBlock(view, "tailu")
	}

	registry := New()
	scanner := NewScanner(registry, view, ulogger.New("test"))

	err := scanner.BuildList(context.Background(), 110, params.InfinityBeginHeight)
	require.Error(t, err, "an unresolvable funding tx must abort the scan")
	assert.True(t, errors.Is(err, errors.ErrMissingChainData), "the returned error must be MissingChainData, not swallowed as malformed")

	_, ok := registry.Find(chain.Outpoint{TxID: testHash("burn-unresolvable"), Vout: 0})
	assert.False(t, ok, "the offending burn must not be registered when the scan aborts")
}

// Determinism & idempotence (universal properties): two fresh scans of
// identical chain content up to the same height produce the same matured
// set, and re-scanning the same window does not change matured state.
func TestScanner_DeterminismAndIdempotence(t *testing.T) {
	const sinkOwner = 0xDD
	params := testParamsWithSink(sinkOwner)

	build := func() *chain.MockView {
		v := newMockChain(t, params)
		for i := 0; i < 100; i++ {
			appendEmptyBlock(v, "padd")
		}
		fund := appendFundingTx(v, "fund-d", 0x05)
		appendBurnBlock(v, "block-d", "burn-d", fund, sinkOwner, 1000000*uint64(settings.Coin))
		for i := 0; i < 20; i++ {
			appendEmptyBlock(v, "taild")
		}
		return v
	}

	tipHeight := int32(100 + 1 + 20 - 1)

	viewA := build()
	regA := New()
	require.NoError(t, NewScanner(regA, viewA, ulogger.New("test")).BuildList(context.Background(), tipHeight, params.InfinityBeginHeight))

	viewB := build()
	regB := New()
	require.NoError(t, NewScanner(regB, viewB, ulogger.New("test")).BuildList(context.Background(), tipHeight, params.InfinityBeginHeight))

	assert.Equal(t, regA.FullMap(), regB.FullMap())

	// Idempotence: a second buildList over the same floor leaves matured
	// state unchanged.
	require.NoError(t, NewScanner(regA, viewA, ulogger.New("test")).BuildList(context.Background(), tipHeight, params.InfinityBeginHeight))
	assert.Equal(t, regB.FullMap(), regA.FullMap())
}
