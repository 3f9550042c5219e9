package infinitynode

import (
	"context"
	"strconv"

	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/errors"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
	"github.com/uhlik-sinovate-development/SIN-core/tracing"
)

// Service bundles the wired components an RPC handler needs: the
// Registry, Scanner, StatementScheduler, and chain view.
type Service struct {
	Registry  *Registry
	Scanner   *Scanner
	Scheduler *StatementScheduler
	TipHook   *BlockTipHook
	View      chain.View
}

// NodeInfo is the JSON-shaped per-record summary returned by show-infos:
// "address created expire roundedBurn tier lastPaid rank".
type NodeInfo struct {
	Address      string `json:"address"`
	Created      int32  `json:"created"`
	Expire       int32  `json:"expire"`
	RoundedBurn  int64  `json:"roundedBurn"`
	Tier         string `json:"tier"`
	LastPaid     int32  `json:"lastPaid"`
	Rank         int32  `json:"rank"`
}

// CandidateResult is the result shape of show-candidate.
type CandidateResult struct {
	BIG string `json:"BIG"`
	MID string `json:"MID"`
	LIL string `json:"LIL"`
}

// Dispatch implements the 7-command RPC surface: build-list,
// show-lastscan, show-infos, show-lastpaid, build-stm, show-stm,
// show-candidate. Unknown commands and malformed args return a typed
// ERR_INVALID_ARGUMENT error.
func (svc *Service) Dispatch(ctx context.Context, command string, args ...string) (interface{}, error) {
	ctx, _, deferFn := tracing.StartTracing(ctx, "infinitynode.rpc."+command)
	defer deferFn()

	switch command {
	case "build-list":
		return svc.handleBuildList(ctx, args)
	case "show-lastscan":
		return svc.handleShowLastScan(args)
	case "show-infos":
		return svc.handleShowInfos(args)
	case "show-lastpaid":
		return svc.handleShowLastPaid(args)
	case "build-stm":
		return svc.handleBuildStm(args)
	case "show-stm":
		return svc.handleShowStm(args)
	case "show-candidate":
		return svc.handleShowCandidate(args)
	default:
		return nil, errors.NewInvalidArgumentError("unknown RPC command %q", command)
	}
}

func (svc *Service) handleBuildList(ctx context.Context, args []string) (interface{}, error) {
	if len(args) != 0 {
		return nil, errors.NewInvalidArgumentError("build-list takes no arguments")
	}

	if err := svc.TipHook.CheckAndRemove(ctx); err != nil {
		return false, err
	}

	return true, nil
}

func (svc *Service) handleShowLastScan(args []string) (interface{}, error) {
	if len(args) != 0 {
		return nil, errors.NewInvalidArgumentError("show-lastscan takes no arguments")
	}

	return svc.Registry.LastScanHeight(), nil
}

func (svc *Service) handleShowInfos(args []string) (interface{}, error) {
	if len(args) != 0 {
		return nil, errors.NewInvalidArgumentError("show-infos takes no arguments")
	}

	out := make(map[string]NodeInfo)

	for outpoint, rec := range svc.Registry.FullMap() {
		out[outpoint.String()] = NodeInfo{
			Address:     rec.PayeeAddress,
			Created:     rec.CreatedHeight,
			Expire:      rec.ExpireHeight,
			RoundedBurn: rec.RoundBurnValue(),
			Tier:        rec.Tier.String(),
			LastPaid:    rec.LastPaidHeight,
			Rank:        rec.Rank,
		}
	}

	return out, nil
}

func (svc *Service) handleShowLastPaid(args []string) (interface{}, error) {
	if len(args) != 0 {
		return nil, errors.NewInvalidArgumentError("show-lastpaid takes no arguments")
	}

	return svc.Registry.FullPayeeIndex(), nil
}

func (svc *Service) handleBuildStm(args []string) (interface{}, error) {
	if len(args) != 0 {
		return nil, errors.NewInvalidArgumentError("build-stm takes no arguments")
	}

	tipHeight := svc.Registry.LastScanHeight() + svc.View.Params().MaturedLimit

	for _, tier := range settings.Tiers {
		svc.Scheduler.Rebuild(tier, tipHeight)
		if start, _, ok := svc.Scheduler.LastStatement(tier); ok {
			svc.Scheduler.Rank(start, tier, true)
		}
	}

	return true, nil
}

func (svc *Service) handleShowStm(args []string) (interface{}, error) {
	if len(args) != 0 {
		return nil, errors.NewInvalidArgumentError("show-stm takes no arguments")
	}

	lines := make([]string, 0, len(settings.Tiers))
	for _, tier := range settings.Tiers {
		lines = append(lines, svc.Scheduler.Summarize(tier))
	}

	return lines, nil
}

func (svc *Service) handleShowCandidate(args []string) (interface{}, error) {
	if len(args) != 1 {
		return nil, errors.NewInvalidArgumentError("show-candidate takes exactly one height argument")
	}

	height, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, errors.NewInvalidArgumentError("show-candidate: %q is not a valid height", args[0])
	}

	if genesis := svc.View.Params().GenesisStatementHeight; int32(height) < genesis {
		return nil, errors.NewInvalidArgumentError("show-candidate: height %d is below genesis statement height %d", height, genesis)
	}

	result := CandidateResult{}

	if rec, ok := svc.Scheduler.CandidateAt(int32(height), settings.TierBIG); ok {
		result.BIG = rec.PayeeAddress
	}
	if rec, ok := svc.Scheduler.CandidateAt(int32(height), settings.TierMID); ok {
		result.MID = rec.PayeeAddress
	}
	if rec, ok := svc.Scheduler.CandidateAt(int32(height), settings.TierLIL); ok {
		result.LIL = rec.PayeeAddress
	}

	return result, nil
}
