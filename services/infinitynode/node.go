// Package infinitynode implements the deterministic registry and
// reward-scheduler for infinity nodes: collateralized service nodes
// established by burning a fixed-denomination amount of coin to a
// well-known sink address.
package infinitynode

import (
	"github.com/libsv/go-bt/v2/bscript"

	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
)

// NodeRecord is the immutable-identity + mutable-derived-fields value
// object for one infinity node. BurnOutpoint, ProtocolVersion,
// CreatedHeight, ExpireHeight, BurnValue, Tier, PayeeAddress, PayeeScript,
// and BackupAddress are fixed at creation; only LastPaidHeight and Rank are
// ever mutated after that, by the Registry and the StatementScheduler
// respectively.
type NodeRecord struct {
	BurnOutpoint    chain.Outpoint
	SigTime         int64
	ProtocolVersion int32
	CreatedHeight   int32
	ExpireHeight    int32
	LastPaidHeight  int32
	NextRewardHeight int32
	BurnValue       int64
	Tier            settings.Tier
	PayeeAddress    string
	PayeeScript     *bscript.Script
	BackupAddress   string
	Rank            int32
}

// RoundBurnValue is the burn amount rounded up to the next whole coin, the
// same rounding the tier derivation uses: floor(burnValue/COIN) + 1.
func (n *NodeRecord) RoundBurnValue() int64 {
	return n.BurnValue/settings.Coin + 1
}

// DeriveTier classifies a burn output value into LIL/MID/BIG, or
// TierUnknown if it matches none of the three configured denominations.
// A value matches tier T's denomination D when it falls in the
// half-open-from-below interval (D-1)*COIN < v <= D*COIN.
func DeriveTier(burnValue int64, params chain.ConsensusParams) settings.Tier {
	for tier, denom := range params.Denom {
		lower := (denom - 1) * settings.Coin
		upper := denom * settings.Coin

		if burnValue > lower && burnValue <= upper {
			return settings.Tier(tier)
		}
	}

	return settings.TierUnknown
}

// Eligible reports whether the record is a live candidate for rank
// assignment at the given statement-start height: it must have been
// created strictly before the statement starts and not yet expired by it.
func (n *NodeRecord) Eligible(statementStartHeight int32) bool {
	return n.CreatedHeight < statementStartHeight && n.ExpireHeight >= statementStartHeight
}

// Matured reports whether the record's creation height is far enough
// behind tipHeight to be safe against re-orgs.
func (n *NodeRecord) Matured(tipHeight int32, maturedLimit int32) bool {
	return n.CreatedHeight <= tipHeight-maturedLimit
}
