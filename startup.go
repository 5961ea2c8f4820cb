package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/binviz/internal/config"
	"github.com/olivier-w/binviz/internal/export"
	"github.com/olivier-w/binviz/internal/frame"
	"github.com/olivier-w/binviz/internal/phase"
	"github.com/olivier-w/binviz/internal/sample"
	"github.com/olivier-w/binviz/internal/ui"
	"github.com/olivier-w/binviz/internal/visualizer"
)

func newController(cfg config.Config, layout phase.Layout) *phase.Controller {
	gen := sample.NewGenerator(nil)
	if cfg.Seed != 0 {
		gen = sample.NewSeeded(cfg.Seed)
	}
	return phase.New(phase.Config{
		Count:     cfg.Count,
		Strategy:  cfg.InitialStrategy(),
		Layout:    layout,
		Generator: gen,
	})
}

func runTUI(cfg config.Config) error {
	model := ui.New(newController(cfg, visualizer.Layout()), ui.Options{FPS: cfg.FPS})
	defer func() {
		if err := model.Scheduler().Stop(); err != nil {
			slog.Warn("scheduler shutdown failed", "err", err)
		}
	}()

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// runExport simulates cfg.ExportFrames ticks on a fixed surface and writes
// PNG frames, replaying the configured script.
func runExport(ctx context.Context, cfg config.Config) error {
	cues, err := config.ParseScript(cfg.Script)
	if err != nil {
		return err
	}
	w, err := export.New(export.Options{
		Dir:    cfg.ExportDir,
		Every:  cfg.ExportEvery,
		Width:  cfg.ExportWidth,
		Height: cfg.ExportHeight,
	})
	if err != nil {
		return err
	}

	ctrl := newController(cfg, phase.DefaultLayout())
	sched := frame.NewScheduler(ctrl, w, w, frame.NewScript(ctrl, cues))

	slog.Info("exporting frames",
		"dir", cfg.ExportDir,
		"frames", cfg.ExportFrames,
		"every", cfg.ExportEvery,
		"strategy", ctrl.Active(),
	)
	start := time.Now()
	runErr := sched.Run(ctx, time.Second/time.Duration(cfg.FPS), uint64(cfg.ExportFrames))
	if errors.Is(runErr, context.Canceled) {
		slog.Warn("export interrupted", "ticks", sched.Ticks())
	}
	stopErr := sched.Stop()
	slog.Info("export finished",
		"written", w.Written(),
		"mode", sched.Last().Anim.Mode,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return errors.Join(runErr, sched.Err(), stopErr)
}
