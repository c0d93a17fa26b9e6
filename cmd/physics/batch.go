package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/zeusync/physics2d/internal/config"
	"github.com/zeusync/physics2d/internal/core/events/bus"
	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/bvh"
	"github.com/zeusync/physics2d/internal/core/systems/physics/resolver"
	"github.com/zeusync/physics2d/internal/core/systems/physics/scene"
	"github.com/zeusync/physics2d/pkg/concurrent"
)

const defaultTicks = 600

// result summarizes one headless run.
type result struct {
	Scene  string
	Ticks  int
	Bodies int
	Begins int
	Ends   int
	Digest uint64
	Tree   bvh.Stats
}

// runBatch simulates every scene in its own world, parallel up to limit,
// and prints one line per scene in argument order.
func runBatch(ctx context.Context, cfg config.Config, paths []string, ticks, limit int, out io.Writer) error {
	logger := log.New(cfg.Log.Level)
	defer func() { _ = logger.Sync() }()

	results, err := concurrent.Map(ctx, paths, limit, func(ctx context.Context, path string) (result, error) {
		return simulate(ctx, cfg, path, ticks, logger.With(log.String("scene", path)))
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENE\tTICKS\tBODIES\tBEGIN\tEND\tHEIGHT\tREINSERT\tDIGEST")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%016x\n",
			r.Scene, r.Ticks, r.Bodies, r.Begins, r.Ends, r.Tree.Height, r.Tree.Reinsertions, r.Digest)
	}
	return tw.Flush()
}

func simulate(ctx context.Context, cfg config.Config, path string, ticks int, logger log.Log) (result, error) {
	s, err := scene.LoadFile(path)
	if err != nil {
		return result{}, err
	}
	if ticks <= 0 {
		ticks = s.Ticks
	}
	if ticks <= 0 {
		ticks = defaultTicks
	}

	events := bus.New()
	w, err := resolver.NewWorld(s.Configure(cfg.Physics), logger, events)
	if err != nil {
		return result{}, err
	}
	bodies, err := s.Populate(w)
	if err != nil {
		return result{}, fmt.Errorf("%s: %w", path, err)
	}

	r := result{Scene: s.Name, Ticks: ticks, Bodies: len(bodies)}
	_, _ = events.Subscribe(physics.EventCollisionBegin, func(bus.Event) error { r.Begins++; return nil })
	_, _ = events.Subscribe(physics.EventCollisionEnd, func(bus.Event) error { r.Ends++; return nil })

	for i := 0; i < ticks; i++ {
		if i%60 == 0 && ctx.Err() != nil {
			return result{}, ctx.Err()
		}
		w.Step()
	}

	r.Digest = w.Digest()
	r.Tree = w.Stats()
	logger.Debug("Scene finished",
		log.Int("ticks", ticks),
		log.Int("begins", r.Begins),
		log.Uint64("digest", r.Digest),
	)
	return r, nil
}
