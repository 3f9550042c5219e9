package infinitynode

import (
	"context"

	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
	"github.com/uhlik-sinovate-development/SIN-core/tracing"
	"github.com/uhlik-sinovate-development/SIN-core/ulogger"
	"github.com/uhlik-sinovate-development/SIN-core/util/retry"
)

// BlockTipHook is the control point the host calls on every new chain tip.
// It records the new height and, from a background scan thread, decides
// whether a cold-start or incremental scan is due and whether any tier's
// statement map needs refreshing.
type BlockTipHook struct {
	registry    *Registry
	scanner     *Scanner
	scheduler   *StatementScheduler
	persistence *Persistence
	view        chain.View
	logger      ulogger.Logger

	cachedBlockHeight int32
}

// NewBlockTipHook wires together the components a tip hook drives.
func NewBlockTipHook(registry *Registry, scanner *Scanner, scheduler *StatementScheduler, persistence *Persistence, view chain.View, logger ulogger.Logger) *BlockTipHook {
	return &BlockTipHook{
		registry:    registry,
		scanner:     scanner,
		scheduler:   scheduler,
		persistence: persistence,
		view:        view,
		logger:      logger,
	}
}

// OnNewTip records the new chain height. Called synchronously by the host
// on every new best chain tip; it performs no I/O.
func (h *BlockTipHook) OnNewTip(height int32) {
	h.cachedBlockHeight = height
}

// CheckAndRemove is the background-thread half of the tip hook, run
// post-sync: it drives the cold-start/incremental scan decision and the
// per-tier statement maintenance trigger, then persists the resulting
// state.
func (h *BlockTipHook) CheckAndRemove(ctx context.Context) error {
	ctx, _, deferFn := tracing.StartTracing(ctx, "infinitynode.CheckAndRemove")
	defer deferFn()

	tipHeight := h.cachedBlockHeight
	params := h.view.Params()

	lastScan := h.registry.LastScanHeight()

	switch {
	case lastScan == 0 && tipHeight > params.InfinityBeginHeight:
		if err := h.scanner.BuildList(ctx, tipHeight, params.InfinityBeginHeight); err != nil {
			return err
		}
	case tipHeight > lastScan:
		if err := h.scanner.BuildList(ctx, tipHeight, lastScan); err != nil {
			return err
		}
	default:
		return nil
	}

	for _, tier := range settings.Tiers {
		start, size, ok := h.scheduler.LastStatement(tier)
		if !ok || start+size-tipHeight < params.MaturedLimit {
			h.scheduler.Rebuild(tier, tipHeight)
			if newStart, _, ok := h.scheduler.LastStatement(tier); ok {
				h.scheduler.Rank(newStart, tier, true)
			}
		}
	}

	if h.persistence != nil {
		_, err := retry.Retry(ctx, h.logger, func() (struct{}, error) {
			return struct{}{}, h.persistence.Snapshot()
		}, retry.WithMessage("infinitynode: persisting snapshot, "), retry.WithRetryCount(3))
		if err != nil {
			h.logger.Errorf("infinitynode: failed to persist snapshot after scan: %v", err)
			return err
		}
	}

	h.logger.Infof("infinitynode: checkAndRemove complete at tip %d, lastScanHeight=%d", tipHeight, h.registry.LastScanHeight())

	return nil
}
