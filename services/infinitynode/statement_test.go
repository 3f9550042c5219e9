package infinitynode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhlik-sinovate-development/SIN-core/settings"
)

// Scenario 2: three LIL burns created after genesis leave the statement
// pinned at (100, 0); candidateAt must return none for every height until
// the tier has a nonzero-size statement to assign ranks within.
func TestStatementScheduler_DegenerateZeroSizeGenesis(t *testing.T) {
	r := New()
	params := testParams()

	r.Add(&NodeRecord{BurnOutpoint: outpoint(1, 0), Tier: settings.TierLIL, CreatedHeight: 101, ExpireHeight: 101 + params.LifetimeBlocks})
	r.Add(&NodeRecord{BurnOutpoint: outpoint(2, 0), Tier: settings.TierLIL, CreatedHeight: 102, ExpireHeight: 102 + params.LifetimeBlocks})
	r.Add(&NodeRecord{BurnOutpoint: outpoint(3, 0), Tier: settings.TierLIL, CreatedHeight: 103, ExpireHeight: 103 + params.LifetimeBlocks})

	sched := NewStatementScheduler(r, params)
	sched.Rebuild(settings.TierLIL, 120)

	start, size, ok := sched.LastStatement(settings.TierLIL)
	require.True(t, ok)
	assert.Equal(t, int32(100), start)
	assert.Equal(t, int32(0), size)

	for _, h := range []int32{101, 110, 120, 150} {
		_, found := sched.CandidateAt(h, settings.TierLIL)
		assert.False(t, found, "height %d must have no candidate while the tier's first statement has size 0", h)
	}
}

// Scenario 3 & 4: rank orders by createdHeight, then by outpoint on ties.
func TestStatementScheduler_RankOrderingAndTieBreak(t *testing.T) {
	r := New()
	params := testParams()

	oA := outpoint(1, 0) // createdHeight 101, Oa < Ob
	oB := outpoint(2, 0) // createdHeight 101
	oC := outpoint(3, 0) // createdHeight 103

	r.Add(&NodeRecord{BurnOutpoint: oA, Tier: settings.TierLIL, CreatedHeight: 101, ExpireHeight: 101 + params.LifetimeBlocks})
	r.Add(&NodeRecord{BurnOutpoint: oB, Tier: settings.TierLIL, CreatedHeight: 101, ExpireHeight: 101 + params.LifetimeBlocks})
	r.Add(&NodeRecord{BurnOutpoint: oC, Tier: settings.TierLIL, CreatedHeight: 103, ExpireHeight: 103 + params.LifetimeBlocks})

	sched := NewStatementScheduler(r, params)

	ranked := sched.Rank(200, settings.TierLIL, false)
	require.Len(t, ranked, 3)

	assert.Equal(t, oA, ranked[1].BurnOutpoint, "tied createdHeight ties break by outpoint, Oa < Ob")
	assert.Equal(t, oB, ranked[2].BurnOutpoint)
	assert.Equal(t, oC, ranked[3].BurnOutpoint)
}

func TestStatementScheduler_RankResetsStaleRanksWhenUpdating(t *testing.T) {
	r := New()
	params := testParams()

	rec := &NodeRecord{BurnOutpoint: outpoint(5, 0), Tier: settings.TierLIL, CreatedHeight: 101, ExpireHeight: 101 + params.LifetimeBlocks, Rank: 99}
	r.Add(rec)

	sched := NewStatementScheduler(r, params)
	sched.Rank(200, settings.TierLIL, true)

	got, ok := r.Find(rec.BurnOutpoint)
	require.True(t, ok)
	assert.Equal(t, int32(1), got.Rank)
}

func TestROI_ZeroPopulationIsZero(t *testing.T) {
	view := newMockChain(t, testParams())
	assert.Equal(t, int64(0), ROI(view, 100, settings.TierLIL, 0))
}
