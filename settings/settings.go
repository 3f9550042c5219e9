// Package settings centralizes configuration for the infinity node
// subsystem, read through gocore.Config() the way the rest of this
// codebase resolves runtime configuration (env vars and gocore.conf,
// with in-code defaults as the fallback).
package settings

import (
	"time"

	"github.com/ordishs/gocore"
)

// Tier identifies one of the three collateral classes a burn can belong to.
type Tier int

const (
	TierUnknown Tier = 0
	TierLIL     Tier = 1
	TierMID     Tier = 5
	TierBIG     Tier = 10
)

func (t Tier) String() string {
	switch t {
	case TierLIL:
		return "LIL"
	case TierMID:
		return "MID"
	case TierBIG:
		return "BIG"
	default:
		return "UNKNOWN"
	}
}

// Tiers in the fixed iteration order used throughout the codebase: BIG,
// MID, LIL. This is also the persisted snapshot order (see Persistence).
var Tiers = [3]Tier{TierBIG, TierMID, TierLIL}

const Coin = int64(100_000_000)

// ConsensusParams holds the chain-defined constants that every participant
// must agree on. These are never user-tunable; they are read here only so
// that test chains can exercise a smaller genesis window.
type ConsensusParams struct {
	InfinityBeginHeight    int32
	GenesisStatementHeight int32
	MaturedLimit           int32
	LifetimeBlocks         int32

	// Denom is the exact burn amount (in whole coins) required for a tier.
	Denom map[Tier]int64
	// Limit is the per-tier population cap used to size the coinbase scan
	// horizon.
	Limit map[Tier]int32

	SinkAddress string
}

// DefaultConsensusParams mirrors the production values: a begin height deep
// into the chain's history, a one-year (720 blocks/day * 365) lifetime, and
// three burn denominations.
func DefaultConsensusParams() ConsensusParams {
	return ConsensusParams{
		InfinityBeginHeight:    165_000,
		GenesisStatementHeight: 165_000,
		MaturedLimit:           55,
		LifetimeBlocks:         720 * 365,
		Denom: map[Tier]int64{
			TierLIL: 100_000,
			TierMID: 500_000,
			TierBIG: 1_000_000,
		},
		Limit: map[Tier]int32{
			TierLIL: 25_000,
			TierMID: 5_000,
			TierBIG: 1_000,
		},
		SinkAddress: "sXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX",
	}
}

// NodeSettings groups the infinitynode service's own tunables, distinct
// from chain-wide consensus parameters.
type NodeSettings struct {
	// SnapshotPath is where Persistence reads/writes the flat registry
	// snapshot on startup and after every successful scan.
	SnapshotPath string
	// ScanTimeout bounds a single buildList walk; it guards against a
	// wedged chain-data dependency, not against legitimate long scans.
	// infinitynoded also uses it as the interval at which it polls the tip.
	ScanTimeout time.Duration
	// RPCListenAddress is where the RPC command dispatcher listens, empty
	// disables the listener (handlers can still be invoked in-process).
	RPCListenAddress string
}

type Settings struct {
	ClientName string
	LogLevel   string
	Consensus  ConsensusParams
	Node       NodeSettings
}

// New reads Settings from gocore.Config(), falling back to the production
// defaults for anything unset. Safe to call multiple times.
func New() *Settings {
	clientName, _ := gocore.Config().Get("CLIENT_NAME", "infinitynode")
	logLevel, _ := gocore.Config().Get("logLevel", "INFO")

	consensus := DefaultConsensusParams()

	if v, _, ok := gocore.Config().GetInt("infinitynode_beginHeight"); ok {
		consensus.InfinityBeginHeight = int32(v)
	}

	if v, _, ok := gocore.Config().GetInt("infinitynode_genesisStatementHeight"); ok {
		consensus.GenesisStatementHeight = int32(v)
	}

	if v, _, ok := gocore.Config().GetInt("infinitynode_maturedLimit"); ok {
		consensus.MaturedLimit = int32(v)
	}

	if v, ok := gocore.Config().Get("infinitynode_sinkAddress"); ok && v != "" {
		consensus.SinkAddress = v
	}

	snapshotPath, _ := gocore.Config().Get("infinitynode_snapshotPath", "infinitynode.dat")

	scanTimeoutMillis, _, _ := gocore.Config().GetInt("infinitynode_scanTimeoutMillis", 30_000)

	rpcAddr, _ := gocore.Config().Get("infinitynode_rpcListenAddress", "")

	return &Settings{
		ClientName: clientName,
		LogLevel:   logLevel,
		Consensus:  consensus,
		Node: NodeSettings{
			SnapshotPath:     snapshotPath,
			ScanTimeout:      time.Duration(scanTimeoutMillis) * time.Millisecond,
			RPCListenAddress: rpcAddr,
		},
	}
}
