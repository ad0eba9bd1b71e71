package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pyimports/internal/config"
	"pyimports/internal/history"
	"pyimports/internal/observability"
	"pyimports/internal/output"
	"pyimports/internal/scan"
	"pyimports/internal/watcher"
)

// App wires the scanner, watcher, history store, and outputs together for
// one configured project.
type App struct {
	Config   *config.Config
	Scanner  *scan.Scanner
	Snapshot *scan.Snapshot

	store   *history.Store
	watcher *watcher.Watcher
	obs     *observability.Server

	lastScan   time.Time
	lastScanMu sync.Mutex

	uiProgram *tea.Program
	uiMu      sync.Mutex
}

func NewApp(cfg *config.Config) (*App, error) {
	scanner, err := scan.New(cfg.Scan.Workers, cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Scanner:  scanner,
		Snapshot: scan.NewSnapshot(),
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		app.store = store
	}

	if cfg.Observe.MetricsAddr != "" {
		app.obs = observability.NewServer(cfg.Observe.MetricsAddr, app)
		if err := app.obs.Start(context.Background()); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// InitialScan discovers and parses every Python file under the configured
// scan roots.
func (a *App) InitialScan(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "app.InitialScan")
	defer span.End()

	files, err := a.Scanner.Discover(a.Config.ScanPaths)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("files", len(files)))

	return a.runScan(ctx, files)
}

// Rescan re-parses the given files after a change notification. Deleted
// files drop out of the snapshot.
func (a *App) Rescan(ctx context.Context, paths []string) error {
	ctx, span := observability.Tracer.Start(ctx, "app.Rescan",
		trace.WithAttributes(attribute.Int("changed", len(paths))))
	defer span.End()

	existing := paths[:0]
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			a.Snapshot.Remove(p)
			continue
		}
		existing = append(existing, p)
	}

	if err := a.runScan(ctx, existing); err != nil {
		return err
	}
	if err := a.GenerateOutputs(); err != nil {
		slog.Error("failed to refresh outputs", "error", err)
	}
	a.notifyUI()
	return nil
}

func (a *App) runScan(ctx context.Context, files []string) error {
	start := time.Now()
	results, err := a.Scanner.Run(ctx, files)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	observability.ScanDuration.Observe(duration.Seconds())

	a.Snapshot.Update(results)
	totalFiles, totalImports, failures := a.Snapshot.Totals()
	observability.TrackedFiles.Set(float64(totalFiles))
	observability.TrackedImports.Set(float64(totalImports))

	a.lastScanMu.Lock()
	a.lastScan = time.Now()
	a.lastScanMu.Unlock()

	for _, r := range results {
		if r.Err != nil {
			slog.Warn("failed to parse file", "path", r.Path, "error", r.Err)
		}
	}

	if a.store != nil {
		if _, err := a.store.SaveRun(start, duration, results); err != nil {
			slog.Error("failed to persist scan history", "error", err)
		} else if err := a.store.Prune(a.Config.History.Keep); err != nil {
			slog.Warn("failed to prune scan history", "error", err)
		}
	}

	slog.Debug("scan finished",
		"scanned", len(files),
		"files", totalFiles,
		"imports", totalImports,
		"failures", failures,
		"duration", duration)
	return nil
}

// GenerateOutputs writes the configured JSON and TSV artifacts from the
// current snapshot.
func (a *App) GenerateOutputs() error {
	results := a.Snapshot.All()

	if path := a.Config.Output.JSON; path != "" {
		if err := output.WriteJSON(path, results); err != nil {
			return fmt.Errorf("write JSON output: %w", err)
		}
	}
	if path := a.Config.Output.TSV; path != "" {
		if err := output.WriteTSV(path, results); err != nil {
			return fmt.Errorf("write TSV output: %w", err)
		}
	}
	return nil
}

// PrintJSON writes the JSON document to stdout.
func (a *App) PrintJSON() error {
	data, err := output.JSON(a.Snapshot.All())
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// PrintSummary writes a human-readable overview of the current snapshot.
func (a *App) PrintSummary() {
	files, imports, failures := a.Snapshot.Totals()

	typechecking := 0
	for _, r := range a.Snapshot.All() {
		for _, imp := range r.Imports {
			if imp.TypecheckingOnly {
				typechecking++
			}
		}
	}

	var b strings.Builder
	b.WriteString("Import Scan Summary\n")
	b.WriteString("===================\n")
	b.WriteString(fmt.Sprintf("Files scanned:            %d\n", files))
	b.WriteString(fmt.Sprintf("Imports found:            %d\n", imports))
	b.WriteString(fmt.Sprintf("Type-checking only:       %d\n", typechecking))
	b.WriteString(fmt.Sprintf("Files failed to parse:    %d\n", failures))

	if failures > 0 {
		b.WriteString("\nFailed files:\n")
		for _, r := range a.Snapshot.All() {
			if r.Err != nil {
				b.WriteString(fmt.Sprintf("- %s: %v\n", r.Path, r.Err))
			}
		}
	}
	fmt.Print(b.String())
}

// StartWatcher begins watching the scan roots and rescans on changes.
func (a *App) StartWatcher() error {
	w, err := watcher.New(watcher.Options{
		Debounce:         a.Config.Watch.Debounce,
		RescansPerSecond: a.Config.Watch.RescansPerSecond,
		Burst:            a.Config.Watch.Burst,
		ExcludeDirs:      a.Config.Exclude.Dirs,
		ExcludeFiles:     a.Config.Exclude.Files,
	}, func(paths []string) {
		if err := a.Rescan(context.Background(), paths); err != nil {
			slog.Error("rescan failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	a.watcher = w
	return w.Watch(a.Config.ScanPaths)
}

// Check implements observability.HealthChecker.
func (a *App) Check(ctx context.Context) observability.HealthStatus {
	files, _, _ := a.Snapshot.Totals()

	a.lastScanMu.Lock()
	last := a.lastScan
	a.lastScanMu.Unlock()

	status := observability.HealthStatus{Status: "up", Files: files}
	if !last.IsZero() {
		status.LastScanAt = last.Format(time.RFC3339)
	}
	return status
}

func (a *App) Close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("failed to close history store", "error", err)
		}
	}
	if a.obs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.obs.Stop(ctx)
	}
}
