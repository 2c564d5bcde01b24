package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"heic_sim/internal/combat"
	"heic_sim/internal/config"
	"heic_sim/internal/logger"
	"heic_sim/internal/script"
	"heic_sim/internal/telemetry"
)

func main() {
	cfg, err := config.ParseRuntime(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Log.WithError(err).Error("simsvc failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Runtime) error {
	shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Log.WithError(err).Warn("telemetry shutdown")
		}
	}()

	bf, err := config.LoadBattle(cfg.Battle)
	if err != nil {
		return err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = bf.Seed
	}
	left, right := bf.Loadouts()
	newRegistry := func() (*combat.Registry, error) {
		return script.Load(bf.ScriptPaths()...)
	}

	log := logger.Log.WithFields(logrus.Fields{
		"battle_file": cfg.Battle,
		"seed":        seed,
		"runs":        cfg.Runs,
	})

	if cfg.Runs <= 1 {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		log.WithField("capabilities", len(reg.Slugs())).Debug("registry loaded")
		res := combat.Simulate(reg, left, right, combat.Options{
			MaxTurns: bf.MaxTurns,
			Seed:     seed,
			Logger:   logger.Log,
			DropLog:  !cfg.Record,
		})
		if err := os.WriteFile(cfg.Out, combat.MarshalPretty(res), 0644); err != nil {
			return fmt.Errorf("write %s: %w", cfg.Out, err)
		}
		fmt.Printf("Single simsvc finished. Result=%s, Rounds=%d, HP %d/%d -> %s\n",
			res.Outcome, res.Rounds, res.Left.HPRemaining, res.Right.HPRemaining, cfg.Out)
		return nil
	}

	summary, err := runBatch(ctx, batchJob{
		runs:        cfg.Runs,
		workers:     cfg.Workers,
		seed:        seed,
		maxTurns:    bf.MaxTurns,
		left:        left,
		right:       right,
		newRegistry: newRegistry,
		log:         log,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Out, combat.MarshalPretty(summary), 0644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Out, err)
	}
	fmt.Printf("Batch %d done -> %s\n", cfg.Runs, cfg.Out)
	return nil
}
