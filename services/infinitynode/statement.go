package infinitynode

import (
	"sort"

	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
)

// StatementScheduler partitions the height axis per tier into reward
// statements and computes the deterministic rank-to-payee mapping within
// each statement. It operates directly on a Registry's node maps and
// statement maps, under the Registry's own cs mutex.
type StatementScheduler struct {
	registry *Registry
	params   chain.ConsensusParams
}

// NewStatementScheduler builds a scheduler bound to registry, using params
// for the genesis statement height.
func NewStatementScheduler(registry *Registry, params chain.ConsensusParams) *StatementScheduler {
	return &StatementScheduler{registry: registry, params: params}
}

// Rebuild clears tier T's statement map and recomputes it from the genesis
// height forward against the Registry's current matured contents:
//
//	h0 = GENESIS_STATEMENT_HEIGHT
//	size_i = count of tier-T records with createdHeight < h_i <= expireHeight
//	h_{i+1} = h_i + size_i
//
// terminating when h_i >= tipHeight.
func (s *StatementScheduler) Rebuild(t settings.Tier, tipHeight int32) {
	r := s.registry

	r.cs.Lock()
	defer r.cs.Unlock()

	records := r.maturedRecordsByTier(int32(t))

	entries := make([]statementEntry, 0)

	h := s.params.GenesisStatementHeight
	for h < tipHeight {
		size := int32(0)
		for _, rec := range records {
			if rec.CreatedHeight < h && h <= rec.ExpireHeight {
				size++
			}
		}

		entries = append(entries, statementEntry{Start: h, Size: size})
		h += size

		if size == 0 {
			// No tier-T records are eligible yet; the partition cannot
			// advance past this point until the population grows, so stop
			// here rather than looping forever at a fixed height.
			break
		}
	}

	r.tiers[int32(t)].statements = entries
}

// LastStatement returns tier T's greatest (start, size) entry with
// start < tipHeight.
func (s *StatementScheduler) LastStatement(t settings.Tier) (start, size int32, ok bool) {
	r := s.registry

	r.cs.Lock()
	defer r.cs.Unlock()

	ts := r.tiers[int32(t)]
	e, present := ts.last()
	if !present {
		return 0, 0, false
	}

	return e.Start, e.Size, true
}

// Rank computes the deterministic rank→NodeRecord mapping for tier T at
// statementStartHeight: records with tier T, createdHeight <
// statementStartHeight, and expireHeight >= statementStartHeight, sorted
// ascending by createdHeight with outpoint tie-break, ranked 1..N. If
// updateList is true, the computed rank is written back onto the
// Registry's records (and every other tier-T record's rank is reset to 0
// first).
func (s *StatementScheduler) Rank(statementStartHeight int32, t settings.Tier, updateList bool) map[int32]NodeRecord {
	r := s.registry

	r.cs.Lock()
	defer r.cs.Unlock()

	all := r.maturedRecordsByTier(int32(t))

	if updateList {
		for _, rec := range all {
			rec.Rank = 0
		}
	}

	eligible := make([]*NodeRecord, 0, len(all))
	for _, rec := range all {
		if rec.Eligible(statementStartHeight) {
			eligible = append(eligible, rec)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.CreatedHeight != b.CreatedHeight {
			return a.CreatedHeight < b.CreatedHeight
		}
		return a.BurnOutpoint.Less(b.BurnOutpoint)
	})

	out := make(map[int32]NodeRecord, len(eligible))
	for i, rec := range eligible {
		rank := int32(i + 1)
		if updateList {
			rec.Rank = rank
		}
		out[rank] = *rec
	}

	return out
}

// CandidateAt returns the node deterministically selected to be paid for
// tier T at height: the predecessor statement (the entry with the largest
// start < height such that height - start <= size), then the record at
// rank (height - start) within it.
func (s *StatementScheduler) CandidateAt(height int32, t settings.Tier) (NodeRecord, bool) {
	r := s.registry

	r.cs.Lock()
	statements := append([]statementEntry(nil), r.tiers[int32(t)].statements...)
	r.cs.Unlock()

	idx := sort.Search(len(statements), func(i int) bool {
		return statements[i].Start >= height
	})

	// sort.Search finds the first entry with Start >= height; the
	// predecessor is the one before it (strict "<" per the spec's
	// "largest h_s < height").
	idx--
	if idx < 0 || idx >= len(statements) {
		return NodeRecord{}, false
	}

	entry := statements[idx]
	offset := height - entry.Start
	if offset <= 0 || offset > entry.Size {
		return NodeRecord{}, false
	}

	ranked := s.Rank(entry.Start, t, false)
	rec, ok := ranked[offset]
	return rec, ok
}

// Summarize renders a one-line description of tier T's scheduler state,
// the direct source of the show-stm RPC result.
func (s *StatementScheduler) Summarize(t settings.Tier) string {
	start, size, ok := s.LastStatement(t)
	population := s.registry.Count(t)

	if !ok {
		return t.String() + ": no statements yet, population=" + itoa32(population)
	}

	return t.String() + ": lastStart=" + itoa32(int(start)) + " lastSize=" + itoa32(int(size)) + " population=" + itoa32(population)
}

func itoa32(v int) string {
	if v == 0 {
		return "0"
	}

	neg := v < 0
	if neg {
		v = -v
	}

	var buf [16]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}
