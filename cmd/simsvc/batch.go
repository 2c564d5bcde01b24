package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"heic_sim/internal/combat"
	"heic_sim/internal/telemetry"
	"heic_sim/internal/util"
)

type batchJob struct {
	runs        int
	workers     int
	seed        int64
	maxTurns    int
	left        combat.Loadout
	right       combat.Loadout
	newRegistry func() (*combat.Registry, error)
	log         logrus.FieldLogger
}

type sideStat struct {
	Wins        int
	HPDealt     int
	ArmorDealt  int
	BombDealt   int
	HPRemaining int
}

type batchSummary struct {
	Runs      int            `json:"runs"`
	Draws     int            `json:"draws"`
	LeftRate  float64        `json:"left_win_rate"`
	RightRate float64        `json:"right_win_rate"`
	AvgRounds float64        `json:"avg_rounds"`
	Faults    int            `json:"faults"`
	Left      map[string]any `json:"left"`
	Right     map[string]any `json:"right"`
}

// runBatch spreads job.runs battles over job.workers workers. Each worker
// builds its own registry because a Lua-backed one is not goroutine-safe.
func runBatch(ctx context.Context, job batchJob) (batchSummary, error) {
	tracer := telemetry.Tracer()
	ctx, batchSpan := tracer.Start(ctx, "simsvc.batch", trace.WithAttributes(
		attribute.Int("batch.runs", job.runs),
		attribute.Int("batch.workers", job.workers),
		attribute.Int64("batch.seed", job.seed),
	))
	defer batchSpan.End()

	var (
		mu          sync.Mutex
		left, right sideStat
		draws       int
		sumRounds   int
		faults      int
	)

	jobs := make(chan int, job.runs)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < job.workers; w++ {
		g.Go(func() error {
			reg, err := job.newRegistry()
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				seed := util.RunSeed(job.seed, i)
				_, span := tracer.Start(ctx, "simsvc.battle", trace.WithAttributes(
					attribute.Int("battle.index", i),
					attribute.Int64("battle.seed", seed),
				))
				res := combat.Simulate(reg, job.left, job.right, combat.Options{
					MaxTurns: job.maxTurns,
					Seed:     seed,
					Logger:   job.log,
					DropLog:  true,
				})
				span.SetAttributes(telemetry.BattleAttributes(res)...)
				span.End()

				mu.Lock()
				switch res.Outcome {
				case combat.LeftWin:
					left.Wins++
				case combat.RightWin:
					right.Wins++
				default:
					draws++
				}
				sumRounds += res.Rounds
				faults += len(res.Faults)
				left.add(res.Left)
				right.add(res.Right)
				mu.Unlock()
			}
			return nil
		})
	}
	for i := 0; i < job.runs; i++ {
		jobs <- i
	}
	close(jobs)
	if err := g.Wait(); err != nil {
		return batchSummary{}, err
	}

	n := float64(job.runs)
	summary := batchSummary{
		Runs:      job.runs,
		Draws:     draws,
		LeftRate:  float64(left.Wins) / n,
		RightRate: float64(right.Wins) / n,
		AvgRounds: float64(sumRounds) / n,
		Faults:    faults,
		Left:      left.averages(n),
		Right:     right.averages(n),
	}
	job.log.WithFields(logrus.Fields{
		"left_win_rate":  summary.LeftRate,
		"right_win_rate": summary.RightRate,
		"draws":          draws,
		"avg_rounds":     summary.AvgRounds,
	}).Info("batch finished")
	return summary, nil
}

func (s *sideStat) add(ss combat.SideSummary) {
	s.HPDealt += ss.HPDamageDealt
	s.ArmorDealt += ss.ArmorDestroyedDealt
	s.BombDealt += ss.BombHPDealt
	s.HPRemaining += ss.HPRemaining
}

func (s sideStat) averages(n float64) map[string]any {
	return map[string]any{
		"wins":                  s.Wins,
		"avg_hp_damage_dealt":   float64(s.HPDealt) / n,
		"avg_armor_destroyed":   float64(s.ArmorDealt) / n,
		"avg_bomb_hp_dealt":     float64(s.BombDealt) / n,
		"avg_hp_remaining":      float64(s.HPRemaining) / n,
		"total_hp_damage_dealt": s.HPDealt,
	}
}
