package infinitynode

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/libsv/go-bt/v2/bscript"
	"github.com/libsv/go-bt/v2/chainhash"
	"github.com/segmentio/encoding/json"

	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/errors"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
)

// snapshotVersion is bumped whenever the on-disk layout changes. A restore
// with a mismatched tag clears the Registry and forces a cold start on the
// next tip hook.
const snapshotVersion = "infinitynode-snapshot-v1"

// snapshotRecord is the JSON-friendly encoding of one matured
// (outpoint, NodeRecord) pair; map keys must be strings, so the snapshot
// represents the matured map as a slice of these instead.
type snapshotRecord struct {
	TxID            string `json:"txid"`
	Vout            uint32 `json:"vout"`
	SigTime         int64  `json:"sigTime"`
	ProtocolVersion int32  `json:"protocolVersion"`
	CreatedHeight   int32  `json:"createdHeight"`
	ExpireHeight    int32  `json:"expireHeight"`
	LastPaidHeight  int32  `json:"lastPaidHeight"`
	NextRewardHeight int32 `json:"nextRewardHeight"`
	BurnValue       int64  `json:"burnValue"`
	Tier            int32  `json:"tier"`
	PayeeAddress    string `json:"payeeAddress"`
	PayeeScript     string `json:"payeeScript"`
	BackupAddress   string `json:"backupAddress"`
}

type snapshotStatement struct {
	Start int32 `json:"start"`
	Size  int32 `json:"size"`
}

type snapshotTier struct {
	Tier       int32               `json:"tier"`
	Statements []snapshotStatement `json:"statements"`
	LastStart  int32               `json:"lastStart"`
	LastSize   int32               `json:"lastSize"`
}

type snapshotDoc struct {
	Version        string            `json:"version"`
	Matured        []snapshotRecord  `json:"matured"`
	PayeeIndex     map[string]int32  `json:"payeeIndex"`
	LastScanHeight int32             `json:"lastScanHeight"`
	Tiers          []snapshotTier    `json:"tiers"`
}

// Persistence serializes/deserializes a Registry's matured state to a flat
// file, written atomically (temp file + rename) so a crash mid-write never
// corrupts the prior snapshot.
type Persistence struct {
	registry *Registry
	path     string
}

// NewPersistence binds a Persistence to registry, reading/writing at path.
func NewPersistence(registry *Registry, path string) *Persistence {
	return &Persistence{registry: registry, path: path}
}

// Snapshot writes the current matured Registry state to disk in the stream
// order: version, matured map, payee index, lastScanHeight, then per tier
// (BIG, MID, LIL): statement map, lastStart, lastSize.
func (p *Persistence) Snapshot() error {
	p.registry.cs.Lock()

	doc := snapshotDoc{
		Version:        snapshotVersion,
		LastScanHeight: p.registry.lastScanHeight,
	}

	for outpoint, rec := range p.registry.matured {
		doc.Matured = append(doc.Matured, toSnapshotRecord(outpoint, rec))
	}

	for _, tier := range settings.Tiers {
		ts := p.registry.tiers[int32(tier)]

		st := snapshotTier{Tier: int32(tier)}
		for _, e := range ts.statements {
			st.Statements = append(st.Statements, snapshotStatement{Start: e.Start, Size: e.Size})
		}

		if last, ok := ts.last(); ok {
			st.LastStart = last.Start
			st.LastSize = last.Size
		}

		doc.Tiers = append(doc.Tiers, st)
	}

	p.registry.cs.Unlock()

	doc.PayeeIndex = p.registry.FullPayeeIndex()

	payload, err := json.Marshal(doc)
	if err != nil {
		return errors.NewStorageError("marshaling infinitynode snapshot", err)
	}

	dir := filepath.Dir(p.path)
	tmp, err := os.CreateTemp(dir, ".infinitynode-snapshot-*")
	if err != nil {
		return errors.NewStorageError("creating temp snapshot file", err)
	}

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.NewStorageError("writing temp snapshot file", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.NewStorageError("closing temp snapshot file", err)
	}

	if err := os.Rename(tmp.Name(), p.path); err != nil {
		os.Remove(tmp.Name())
		return errors.NewStorageError("renaming snapshot file into place", err)
	}

	return nil
}

// Restore loads a prior snapshot from disk. A missing file is treated as a
// cold start (no error, empty Registry). A version mismatch clears the
// Registry and returns nil — the next tip hook performs a cold start.
func (p *Persistence) Restore() error {
	payload, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewStorageError("reading snapshot file", err)
	}

	var doc snapshotDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return errors.NewStorageError("unmarshaling infinitynode snapshot", err)
	}

	if doc.Version != snapshotVersion {
		p.registry.Clear()
		return nil
	}

	p.registry.Clear()

	p.registry.cs.Lock()
	for _, sr := range doc.Matured {
		rec, err := fromSnapshotRecord(sr)
		if err != nil {
			p.registry.cs.Unlock()
			return errors.NewVersionMismatchError("decoding snapshot record", err)
		}
		p.registry.matured[rec.BurnOutpoint] = rec
	}

	p.registry.lastScanHeight = doc.LastScanHeight

	for _, st := range doc.Tiers {
		entries := make([]statementEntry, 0, len(st.Statements))
		for _, e := range st.Statements {
			entries = append(entries, statementEntry{Start: e.Start, Size: e.Size})
		}
		p.registry.tiers[st.Tier] = &tierState{statements: entries}
	}
	p.registry.cs.Unlock()

	p.registry.csLastPaid.Lock()
	for k, v := range doc.PayeeIndex {
		p.registry.payeeIndex[k] = v
	}
	p.registry.csLastPaid.Unlock()

	return nil
}

func toSnapshotRecord(outpoint chain.Outpoint, rec *NodeRecord) snapshotRecord {
	return snapshotRecord{
		TxID:             outpoint.TxID.String(),
		Vout:             outpoint.Vout,
		SigTime:          rec.SigTime,
		ProtocolVersion:  rec.ProtocolVersion,
		CreatedHeight:    rec.CreatedHeight,
		ExpireHeight:     rec.ExpireHeight,
		LastPaidHeight:   rec.LastPaidHeight,
		NextRewardHeight: rec.NextRewardHeight,
		BurnValue:        rec.BurnValue,
		Tier:             int32(rec.Tier),
		PayeeAddress:     rec.PayeeAddress,
		PayeeScript:      scriptHex(rec.PayeeScript),
		BackupAddress:    rec.BackupAddress,
	}
}

func scriptHex(s *bscript.Script) string {
	if s == nil {
		return ""
	}
	return hex.EncodeToString(*s)
}

func fromSnapshotRecord(sr snapshotRecord) (*NodeRecord, error) {
	txid, err := chainhash.NewHashFromStr(sr.TxID)
	if err != nil {
		return nil, errors.NewStorageError("parsing snapshot outpoint txid %s", sr.TxID, err)
	}

	var script *bscript.Script
	if sr.PayeeScript != "" {
		raw, err := hex.DecodeString(sr.PayeeScript)
		if err != nil {
			return nil, errors.NewStorageError("parsing snapshot payee script", err)
		}
		s := bscript.Script(raw)
		script = &s
	}

	return &NodeRecord{
		BurnOutpoint:     chain.Outpoint{TxID: *txid, Vout: sr.Vout},
		SigTime:          sr.SigTime,
		ProtocolVersion:  sr.ProtocolVersion,
		CreatedHeight:    sr.CreatedHeight,
		ExpireHeight:     sr.ExpireHeight,
		LastPaidHeight:   sr.LastPaidHeight,
		NextRewardHeight: sr.NextRewardHeight,
		BurnValue:        sr.BurnValue,
		Tier:             settings.Tier(sr.Tier),
		PayeeAddress:     sr.PayeeAddress,
		PayeeScript:      script,
		BackupAddress:    sr.BackupAddress,
	}, nil
}
