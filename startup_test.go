package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/olivier-w/binviz/internal/config"
	"github.com/olivier-w/binviz/internal/phase"
	"github.com/olivier-w/binviz/internal/quant"
)

func TestNewControllerUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Count = 30
	cfg.Seed = 7
	cfg.Strategy = "optimized"

	ctrl := newController(cfg, phase.DefaultLayout())
	if ctrl.Active() != quant.Optimized {
		t.Fatalf("expected optimized, got %s", ctrl.Active())
	}
	if n := ctrl.Population().Len(); n != 30 {
		t.Fatalf("expected 30 particles, got %d", n)
	}

	again := newController(cfg, phase.DefaultLayout())
	a, b := ctrl.Population().Values(), again.Population().Values()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected seeded populations to match at %d: %f != %f", i, a[i], b[i])
		}
	}
}

func TestRunExportWritesFrames(t *testing.T) {
	cfg := config.Default()
	cfg.Count = 20
	cfg.Seed = 1
	cfg.FPS = 240
	cfg.ExportDir = t.TempDir()
	cfg.ExportFrames = 4
	cfg.ExportEvery = 2
	cfg.ExportWidth = 64
	cfg.ExportHeight = 48
	cfg.Script = "adaptive@2"

	if err := runExport(context.Background(), cfg); err != nil {
		t.Fatalf("runExport() error = %v", err)
	}
	files, err := filepath.Glob(filepath.Join(cfg.ExportDir, "frame-*.png"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(files))
	}
	if _, err := os.Stat(filepath.Join(cfg.ExportDir, "frame-00001.png")); err != nil {
		t.Fatalf("expected second frame: %v", err)
	}
}

func TestRunExportRejectsBadScript(t *testing.T) {
	cfg := config.Default()
	cfg.ExportDir = t.TempDir()
	cfg.Script = "median@3"
	if err := runExport(context.Background(), cfg); err == nil {
		t.Fatal("expected script error")
	}
}

func TestRunHelpExitsCleanly(t *testing.T) {
	if code := run([]string{"-h"}); code != 0 {
		t.Fatalf("expected exit 0 for -h, got %d", code)
	}
	if code := run([]string{"-count", "0"}); code != 2 {
		t.Fatalf("expected exit 2 for invalid config, got %d", code)
	}
}
