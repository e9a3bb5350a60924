// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// poolsim replays staking pool scenarios against the weight accounting engine.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/covermesh/mutual/log"
	"github.com/covermesh/mutual/metrics"
	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/stakingproducts"
	"github.com/covermesh/mutual/state"
)

var (
	version       string
	gitCommit     string
	gitTag        string
	copyrightYear string

	logger = log.WithContext("pkg", "poolsim")

	runFlags = []cli.Flag{
		verbosityFlag,
		jsonLogsFlag,
		configFlag,
		dataDirFlag,
		cacheFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		holdFlag,
		progressFlag,
	}
)

func main() {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	app := cli.App{
		Version:   fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta),
		Name:      "Poolsim",
		Usage:     "staking pool weight simulator",
		Copyright: fmt.Sprintf("2025-%s VeChain Foundation <https://vechain.org/>", copyrightYear),
		Commands: []cli.Command{
			{
				Name:      "run",
				Usage:     "run a scenario file",
				ArgsUsage: "<scenario.yaml>",
				Flags:     runFlags,
				Action:    runAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(ctx *cli.Context) error {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	initLogger(os.Stderr, lvl, ctx.Bool(jsonLogsFlag.Name))

	if ctx.NArg() != 1 {
		return errors.New("expected exactly one scenario file")
	}

	if path := ctx.String(configFlag.Name); path != "" {
		cfg, err := loadConfig(path)
		if err != nil {
			return err
		}
		mutual.SetConfig(cfg)
	}
	mutual.LockConfig()

	sc, err := loadScenario(ctx.Args().First())
	if err != nil {
		return err
	}

	exitSignal := handleExitSignal()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		logger.Info("metrics server started", "url", url)
		defer closeFunc()
	}

	db, location, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if stats, err := db.Stats(); err == nil {
			logger.Debug("database stats\n" + stats)
		}
		logger.Info("closing database...")
		db.Close()
	}()

	st, err := state.New(db, ctx.Int(cacheFlag.Name))
	if err != nil {
		return err
	}

	sim := newSimulation(func(clock func() uint64) *stakingproducts.StakingProducts {
		return stakingproducts.New(st, clock)
	}, sc.Start, logger)

	logger.Info("running scenario", "rounds", len(sc.Rounds), "database", location)
	var bar *pb.ProgressBar
	if ctx.Bool(progressFlag.Name) {
		bar = pb.New(len(sc.Rounds)).SetMaxWidth(90)
		bar.Output = os.Stderr
		bar.Start()
		defer func() { bar.NotPrint = true }()
		sim.OnRound = func(int) { bar.Increment() }
	}
	if err := sim.Run(exitSignal, sc); err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
	}
	if err := sim.Report(); err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) && ctx.Bool(holdFlag.Name) {
		logger.Info("scenario finished, serving metrics until interrupted")
		<-exitSignal.Done()
	}
	return nil
}
