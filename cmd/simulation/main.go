package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/internal/cli"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
)

func main() {
	root := cli.NewRootCommand("simulation", "Glyph swarm in an ebiten window", os.Stdout, run)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *simulation.Config, logger log.Logger) error {
	system, err := actor.NewActorSystem("GlyphSwarm",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("failed to start actor system: %w", err)
	}
	defer func() { _ = system.Stop(ctx) }()

	game, err := simulation.GetNewGame(ctx, cfg, system)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(cfg.WorldWidth, cfg.WorldHeight)
	ebiten.SetWindowTitle("Glyph swarm: " + cfg.Word)
	return ebiten.RunGame(game)
}
