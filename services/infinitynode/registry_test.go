package infinitynode

import (
	"testing"

	"github.com/libsv/go-bt/v2/bscript"
	"github.com/libsv/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
)

func outpoint(label byte, vout uint32) chain.Outpoint {
	var h chainhash.Hash
	h[0] = label
	return chain.Outpoint{TxID: h, Vout: vout}
}

func scriptFor(b byte) *bscript.Script {
	s := bscript.Script{0x76, 0xa9, 0x14, b, b, b, b, b, b, b, b, b, b, b, b, b, b, b, b, b, b, b, 0x88, 0xac}
	return &s
}

func TestRegistry_AddRejectsDuplicate(t *testing.T) {
	r := New()

	rec := &NodeRecord{BurnOutpoint: outpoint(1, 0), Tier: settings.TierLIL}

	assert.True(t, r.Add(rec))
	assert.False(t, r.Add(rec), "a second add of the same outpoint must be rejected, not mutate state")
	assert.Equal(t, 1, r.CountAll())
}

func TestRegistry_UpdateLastPaidIsMonotone(t *testing.T) {
	r := New()
	script := scriptFor(7)

	r.UpdateLastPaid(script, 100)
	r.UpdateLastPaid(script, 50) // lower height must not regress the index

	idx := r.FullPayeeIndex()
	assert.Equal(t, int32(100), idx[script.String()])

	r.UpdateLastPaid(script, 150)
	idx = r.FullPayeeIndex()
	assert.Equal(t, int32(150), idx[script.String()])
}

func TestRegistry_UpdateLastPaidFromIndex(t *testing.T) {
	r := New()
	script := scriptFor(9)

	rec := &NodeRecord{BurnOutpoint: outpoint(2, 0), Tier: settings.TierLIL, PayeeScript: script}
	require.True(t, r.Add(rec))

	r.UpdateLastPaid(script, 150)
	r.UpdateLastPaidFromIndex()

	got, ok := r.Find(rec.BurnOutpoint)
	require.True(t, ok)
	assert.Equal(t, int32(150), got.LastPaidHeight)
}

func TestRegistry_ClearResetsEverything(t *testing.T) {
	r := New()
	r.Add(&NodeRecord{BurnOutpoint: outpoint(3, 0), Tier: settings.TierLIL})
	r.UpdateLastPaid(scriptFor(3), 42)
	r.setLastScanHeight(500)

	r.Clear()

	assert.Equal(t, 0, r.CountAll())
	assert.Empty(t, r.FullPayeeIndex())
	assert.Equal(t, int32(0), r.LastScanHeight())
}

func TestRegistry_HasPayee(t *testing.T) {
	r := New()
	script := scriptFor(4)

	assert.False(t, r.HasPayee(script))

	r.Add(&NodeRecord{BurnOutpoint: outpoint(4, 0), Tier: settings.TierMID, PayeeScript: script})

	assert.True(t, r.HasPayee(script))
}
