package infinitynode

import (
	"sync"

	"github.com/libsv/go-bt/v2/bscript"

	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
)

// statementEntry is one (start, size) pair in a tier's statement map.
type statementEntry struct {
	Start int32
	Size  int32
}

// tierState holds everything the StatementScheduler owns for a single
// tier, guarded by the Registry's cs mutex alongside the node maps.
type tierState struct {
	statements []statementEntry // sorted ascending by Start
}

func (t *tierState) last() (statementEntry, bool) {
	if len(t.statements) == 0 {
		return statementEntry{}, false
	}
	return t.statements[len(t.statements)-1], true
}

// Registry is the in-memory set of NodeRecords keyed by burn outpoint, the
// payee-to-last-paid-height index, and the per-tier statement maps. Two
// mutexes guard it, per the concurrency model this package implements
// literally: cs covers the node maps, the non-matured shadow map, the
// statement maps, and lastScanHeight; csLastPaid covers only the payee
// index. Lock order is always cs before csLastPaid, never the reverse.
type Registry struct {
	cs sync.Mutex

	matured    map[chain.Outpoint]*NodeRecord
	nonMatured map[chain.Outpoint]*NodeRecord
	tiers      map[int32]*tierState

	lastScanHeight int32

	csLastPaid sync.Mutex
	payeeIndex map[string]int32
}

// New builds an empty Registry ready for a cold-start scan.
func New() *Registry {
	r := &Registry{
		matured:    make(map[chain.Outpoint]*NodeRecord),
		nonMatured: make(map[chain.Outpoint]*NodeRecord),
		tiers:      make(map[int32]*tierState),
		payeeIndex: make(map[string]int32),
	}

	for _, t := range []int32{int32(1), int32(5), int32(10)} {
		r.tiers[t] = &tierState{}
	}

	return r
}

func scriptKey(s *bscript.Script) string {
	if s == nil {
		return ""
	}
	return s.String()
}

// Add inserts record if its burn outpoint is absent. Returns false without
// mutation on a duplicate identity.
func (r *Registry) Add(record *NodeRecord) bool {
	r.cs.Lock()
	defer r.cs.Unlock()

	if _, ok := r.matured[record.BurnOutpoint]; ok {
		return false
	}

	r.matured[record.BurnOutpoint] = record
	return true
}

// addNonMatured places record in the shadow set, overwriting any prior
// entry at the same outpoint. Used only by the Scanner while rebuilding
// the re-org-sensitive tail of the window.
func (r *Registry) addNonMatured(record *NodeRecord) {
	r.cs.Lock()
	defer r.cs.Unlock()

	r.nonMatured[record.BurnOutpoint] = record
}

// clearNonMatured empties the shadow set. Called unconditionally at the
// start of every scan.
func (r *Registry) clearNonMatured() {
	r.cs.Lock()
	defer r.cs.Unlock()

	r.nonMatured = make(map[chain.Outpoint]*NodeRecord)
}

// Find returns a copy of the record at outpoint, if present, checking the
// matured map only (the shadow set is not externally addressable).
func (r *Registry) Find(outpoint chain.Outpoint) (NodeRecord, bool) {
	r.cs.Lock()
	defer r.cs.Unlock()

	rec, ok := r.matured[outpoint]
	if !ok {
		return NodeRecord{}, false
	}

	return *rec, true
}

// Has reports whether outpoint is a known matured identity.
func (r *Registry) Has(outpoint chain.Outpoint) bool {
	r.cs.Lock()
	defer r.cs.Unlock()

	_, ok := r.matured[outpoint]
	return ok
}

// HasPayee reports whether any matured record pays the given script.
func (r *Registry) HasPayee(script *bscript.Script) bool {
	key := scriptKey(script)

	r.cs.Lock()
	defer r.cs.Unlock()

	for _, rec := range r.matured {
		if scriptKey(rec.PayeeScript) == key {
			return true
		}
	}

	return false
}

// UpdateLastPaid sets payeeIndex[script] = max(existing, height). Always
// succeeds, inserting the entry if it was absent.
func (r *Registry) UpdateLastPaid(script *bscript.Script, height int32) bool {
	key := scriptKey(script)

	r.csLastPaid.Lock()
	defer r.csLastPaid.Unlock()

	if existing, ok := r.payeeIndex[key]; !ok || height > existing {
		r.payeeIndex[key] = height
	}

	return true
}

// UpdateLastPaidFromIndex applies the payee index onto every matured
// record's LastPaidHeight, leaving records with no index entry untouched.
func (r *Registry) UpdateLastPaidFromIndex() {
	r.cs.Lock()
	defer r.cs.Unlock()

	r.csLastPaid.Lock()
	defer r.csLastPaid.Unlock()

	for _, rec := range r.matured {
		if height, ok := r.payeeIndex[scriptKey(rec.PayeeScript)]; ok {
			rec.LastPaidHeight = height
		}
	}
}

// Clear empties the Registry completely: both node maps, the statement
// maps, the payee index, and resets lastScanHeight to 0.
func (r *Registry) Clear() {
	r.cs.Lock()
	r.matured = make(map[chain.Outpoint]*NodeRecord)
	r.nonMatured = make(map[chain.Outpoint]*NodeRecord)
	for t := range r.tiers {
		r.tiers[t] = &tierState{}
	}
	r.lastScanHeight = 0
	r.cs.Unlock()

	r.csLastPaid.Lock()
	r.payeeIndex = make(map[string]int32)
	r.csLastPaid.Unlock()
}

// LastScanHeight returns the height the last completed scan reached.
func (r *Registry) LastScanHeight() int32 {
	r.cs.Lock()
	defer r.cs.Unlock()
	return r.lastScanHeight
}

func (r *Registry) setLastScanHeight(h int32) {
	r.cs.Lock()
	defer r.cs.Unlock()
	r.lastScanHeight = h
}

// Count returns the number of matured records of the given tier.
func (r *Registry) Count(tier settings.Tier) int {
	r.cs.Lock()
	defer r.cs.Unlock()

	n := 0
	for _, rec := range r.matured {
		if rec.Tier == tier {
			n++
		}
	}

	return n
}

// CountAll returns the total number of matured records across all tiers.
func (r *Registry) CountAll() int {
	r.cs.Lock()
	defer r.cs.Unlock()
	return len(r.matured)
}

// FullMap returns a defensive copy of the matured node map.
func (r *Registry) FullMap() map[chain.Outpoint]NodeRecord {
	r.cs.Lock()
	defer r.cs.Unlock()

	out := make(map[chain.Outpoint]NodeRecord, len(r.matured))
	for k, v := range r.matured {
		out[k] = *v
	}

	return out
}

// FullNonMaturedMap returns a defensive copy of the shadow node map.
func (r *Registry) FullNonMaturedMap() map[chain.Outpoint]NodeRecord {
	r.cs.Lock()
	defer r.cs.Unlock()

	out := make(map[chain.Outpoint]NodeRecord, len(r.nonMatured))
	for k, v := range r.nonMatured {
		out[k] = *v
	}

	return out
}

// FullPayeeIndex returns a defensive copy of the payee-to-height index.
func (r *Registry) FullPayeeIndex() map[string]int32 {
	r.csLastPaid.Lock()
	defer r.csLastPaid.Unlock()

	out := make(map[string]int32, len(r.payeeIndex))
	for k, v := range r.payeeIndex {
		out[k] = v
	}

	return out
}

// maturedRecordsByTier returns the live (unreplaced) *NodeRecord pointers
// for a tier. Callers must hold cs.
func (r *Registry) maturedRecordsByTier(t int32) []*NodeRecord {
	out := make([]*NodeRecord, 0)
	for _, rec := range r.matured {
		if int32(rec.Tier) == t {
			out = append(out, rec)
		}
	}
	return out
}
