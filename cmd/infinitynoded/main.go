package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ordishs/gocore"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/uhlik-sinovate-development/SIN-core/chain"
	"github.com/uhlik-sinovate-development/SIN-core/services/infinitynode"
	"github.com/uhlik-sinovate-development/SIN-core/settings"
	"github.com/uhlik-sinovate-development/SIN-core/ulogger"
)

const progname = "infinitynoded"

var version string
var commit string

func init() {
	gocore.SetInfo(progname, version, commit)
	gocore.Log(progname)

	gocore.AddAppPayloadFn("CONFIG", func() interface{} {
		return gocore.Config().GetAll()
	})
}

// newChainView is the injection point for a real chain-node-backed
// chain.View. Until one exists, infinitynoded runs against an in-memory
// view seeded from the consensus params only, which is enough to exercise
// the RPC surface and snapshot persistence but never observes real chain
// activity.
func newChainView(params settings.ConsensusParams) *chain.MockView {
	cp := chain.ConsensusParams{
		InfinityBeginHeight:    params.InfinityBeginHeight,
		GenesisStatementHeight: params.GenesisStatementHeight,
		MaturedLimit:           params.MaturedLimit,
		LifetimeBlocks:         params.LifetimeBlocks,
		Denom:                  map[int32]int64{},
		Limit:                  map[int32]int32{},
		SinkAddress:            params.SinkAddress,
	}

	for _, tier := range settings.Tiers {
		cp.Denom[int32(tier)] = params.Denom[tier]
		cp.Limit[int32(tier)] = params.Limit[tier]
	}

	return chain.NewMockView(cp)
}

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "deterministic infinity-node registry and reward scheduler",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "snapshot-path", Usage: "path to the registry snapshot file"},
			&cli.StringFlag{Name: "rpc-listen", Usage: "address the RPC/HTTP listener binds to"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		ulogger.New(progname).Fatalf("infinitynoded: %v", err)
	}
}

func run(c *cli.Context) error {
	tSettings := settings.New()

	if v := c.String("snapshot-path"); v != "" {
		tSettings.Node.SnapshotPath = v
	}
	if v := c.String("rpc-listen"); v != "" {
		tSettings.Node.RPCListenAddress = v
	}

	logger := ulogger.New(progname, tSettings.LogLevel)

	stats := gocore.Config().Stats()
	logger.Infof("STATS\n%s\nVERSION\n-------\n%s (%s)\n\n", stats, version, commit)

	view := newChainView(tSettings.Consensus)

	registry := infinitynode.New()
	scanner := infinitynode.NewScanner(registry, view, logger)
	scheduler := infinitynode.NewStatementScheduler(registry, view.Params())
	persistence := infinitynode.NewPersistence(registry, tSettings.Node.SnapshotPath)

	if err := persistence.Restore(); err != nil {
		logger.Fatalf("infinitynoded: failed to restore snapshot: %v", err)
	}

	tipHook := infinitynode.NewBlockTipHook(registry, scanner, scheduler, persistence, view, logger)

	svc := &infinitynode.Service{
		Registry:  registry,
		Scanner:   scanner,
		Scheduler: scheduler,
		TipHook:   tipHook,
		View:      view,
	}

	httpServer := infinitynode.NewHTTPServer(svc, tSettings.Node.RPCListenAddress, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Run(gCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(tSettings.Node.ScanTimeout)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				height, ok := view.Height()
				if !ok {
					continue
				}

				tipHook.OnNewTip(height)

				scanCtx, cancelScan := context.WithTimeout(gCtx, tSettings.Node.ScanTimeout)
				err := tipHook.CheckAndRemove(scanCtx)
				cancelScan()

				if err != nil {
					logger.Warnf("infinitynoded: checkAndRemove failed: %v", err)
				}
			}
		}
	})

	logger.Infof("infinitynoded: listening on %s", tSettings.Node.RPCListenAddress)

	if err := g.Wait(); err != nil && err != http.ErrServerClosed {
		logger.Errorf("infinitynoded: service exited with error: %v", err)
	}

	return nil
}

