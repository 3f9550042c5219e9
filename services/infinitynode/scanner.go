package infinitynode

import (
	"context"

	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/errors"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
	"github.com/uhlik-sinovate-development/SIN-core/tracing"
	"github.com/uhlik-sinovate-development/SIN-core/ulogger"
)

// Scanner reconciles a Registry with the chain's contents for a height
// window, walking backward from tip and ingesting both burn transactions
// (new node identities) and coinbase payouts (last-paid updates).
type Scanner struct {
	registry *Registry
	view     chain.View
	logger   ulogger.Logger
}

// NewScanner builds a Scanner bound to registry and view.
func NewScanner(registry *Registry, view chain.View, logger ulogger.Logger) *Scanner {
	return &Scanner{registry: registry, view: view, logger: logger}
}

// BuildList reconciles the Registry with chain contents over
// [lowHeight, tipHeight]. On cold start (lowHeight == the chain's
// InfinityBeginHeight) it clears the Registry first. The non-matured
// shadow set is always cleared at entry, then rebuilt from scratch for the
// current window.
func (s *Scanner) BuildList(ctx context.Context, tipHeight, lowHeight int32) (err error) {
	ctx, _, deferFn := tracing.StartTracing(ctx, "infinitynode.BuildList")
	defer deferFn()

	defer func() {
		if err != nil {
			scansTotal.WithLabelValues("error").Inc()
		}
	}()

	params := s.view.Params()

	if tipHeight < lowHeight || lowHeight < params.InfinityBeginHeight {
		return errors.NewInvalidArgumentError("buildList: tipHeight %d, lowHeight %d out of range for beginHeight %d", tipHeight, lowHeight, params.InfinityBeginHeight)
	}

	if lowHeight == params.InfinityBeginHeight {
		s.registry.Clear()
	}

	s.registry.clearNonMatured()

	tipHash, ok, err := s.view.BlockHashAtHeight(ctx, tipHeight)
	if err != nil {
		return errors.NewMissingChainDataError("resolving tip hash", err)
	}
	if !ok {
		return errors.NewMissingChainDataError("no block at height %d", tipHeight)
	}

	index, err := s.view.BlockIndexByHash(ctx, tipHash)
	if err != nil {
		return errors.NewMissingChainDataError("resolving tip index", err)
	}

	lastPaidDepth := maxInt32(params.Limit[int32(settings.TierLIL)], params.Limit[int32(settings.TierMID)], params.Limit[int32(settings.TierBIG)])

	current := index
	for current.Height >= lowHeight {
		select {
		case <-ctx.Done():
			return errors.NewContextCanceledError("scan interrupted at height %d", current.Height)
		default:
		}

		block, err := s.view.ReadBlock(ctx, current)
		if err != nil {
			return errors.NewMissingChainDataError("reading block at height %d", current.Height, err)
		}

		inPaidWindow := current.Height >= tipHeight-lastPaidDepth

		for _, tx := range block.Transactions {
			if tx.Coinbase {
				if inPaidWindow {
					s.ingestCoinbase(tx, current.Height)
				}
				continue
			}

			if err := s.ingestBurn(ctx, tx, current.Height, tipHeight, params); err != nil {
				if errors.Is(err, errors.ErrMissingChainData) {
					return errors.NewMissingChainDataError("resolving burn funding tx at height %d", current.Height, err)
				}

				s.logger.Warnf("infinitynode: skipping malformed burn candidate at height %d: %v", current.Height, err)
			}
		}

		if current.Prev == nil {
			break
		}

		current, err = s.view.BlockIndexByHash(ctx, *current.Prev)
		if err != nil {
			return errors.NewMissingChainDataError("walking to prev block", err)
		}
	}

	s.registry.setLastScanHeight(tipHeight - params.MaturedLimit)
	s.registry.UpdateLastPaidFromIndex()

	scansTotal.WithLabelValues("ok").Inc()

	return nil
}

// UpdateList performs an incremental scan from the Registry's last scan
// height, or a cold start if none has run yet.
func (s *Scanner) UpdateList(ctx context.Context, tipHeight int32) error {
	lastScan := s.registry.LastScanHeight()

	if lastScan > 0 {
		return s.BuildList(ctx, tipHeight, lastScan)
	}

	return s.BuildList(ctx, tipHeight, s.view.Params().InfinityBeginHeight)
}

func (s *Scanner) ingestBurn(ctx context.Context, tx *chain.Transaction, height, tipHeight int32, params chain.ConsensusParams) error {
	for vout, out := range tx.Outputs {
		tier := DeriveTier(int64(out.Satoshis), params)
		if tier == settings.TierUnknown {
			continue
		}

		solution, err := s.view.SolveScript(out.LockingScript)
		if err != nil || len(solution.Solutions) != 1 {
			continue
		}

		addr, err := s.view.EncodeDestinationFromHash160(solution.Solutions[0])
		if err != nil || addr != params.SinkAddress {
			continue
		}

		record, err := s.buildRecord(ctx, tx, uint32(vout), out, height, tier, params)
		if err != nil {
			burnsRejectedTotal.Inc()
			return err
		}

		if height < tipHeight-params.MaturedLimit {
			if s.registry.Add(record) {
				burnsRegisteredTotal.WithLabelValues(tier.String()).Inc()
			} else {
				burnsRejectedTotal.Inc()
				s.logger.Debugf("infinitynode: duplicate burn outpoint %s ignored", record.BurnOutpoint.String())
			}
		} else {
			s.registry.addNonMatured(record)
		}
	}

	return nil
}

func (s *Scanner) buildRecord(ctx context.Context, tx *chain.Transaction, vout uint32, out *chain.TxOutput, height int32, tier settings.Tier, params chain.ConsensusParams) (*NodeRecord, error) {
	if len(tx.Inputs) == 0 {
		return nil, errors.NewMalformedBurnError("burn tx %s has no inputs to fund from", tx.TxID.String())
	}

	firstInput := tx.Inputs[0]

	fundingTx, _, err := s.view.GetTransaction(ctx, firstInput.PreviousTxID)
	if err != nil {
		return nil, errors.NewMissingChainDataError("resolving funding tx for burn %s", tx.TxID.String(), err)
	}

	if int(firstInput.PreviousVout) >= len(fundingTx.Outputs) {
		return nil, errors.NewMalformedBurnError("funding vout %d out of range for tx %s", firstInput.PreviousVout, firstInput.PreviousTxID.String())
	}

	fundingOut := fundingTx.Outputs[firstInput.PreviousVout]

	solution, err := s.view.SolveScript(fundingOut.LockingScript)
	if err != nil || len(solution.Solutions) != 1 {
		return nil, errors.NewMalformedBurnError("could not solve funding script for burn %s", tx.TxID.String())
	}

	payeeAddress, err := s.view.EncodeDestinationFromHash160(solution.Solutions[0])
	if err != nil {
		return nil, errors.NewMalformedBurnError("could not encode payee for burn %s", tx.TxID.String(), err)
	}

	return &NodeRecord{
		BurnOutpoint:    chain.Outpoint{TxID: tx.TxID, Vout: vout},
		ProtocolVersion: 1,
		CreatedHeight:   height,
		ExpireHeight:    height + params.LifetimeBlocks,
		BurnValue:       int64(out.Satoshis),
		Tier:            tier,
		PayeeAddress:    payeeAddress,
		PayeeScript:     fundingOut.LockingScript,
	}, nil
}

func (s *Scanner) ingestCoinbase(tx *chain.Transaction, height int32) {
	for _, tier := range settings.Tiers {
		expected, err := s.view.RewardAt(height, int32(tier))
		if err != nil || expected <= 0 {
			continue
		}

		for _, out := range tx.Outputs {
			if int64(out.Satoshis) == expected {
				s.registry.UpdateLastPaid(out.LockingScript, height)
			}
		}
	}
}

func maxInt32(vals ...int32) int32 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
