// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/shadowrail/shadowrail/internal/config"
	"github.com/shadowrail/shadowrail/internal/openapi"
)

var (
	watchDebounce int
	watchOnChange string
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Watch routes.rb and app/controllers, re-running the audit on change",
	Long: `Watch monitors config/routes.rb and app/controllers for changes and
re-runs the full generate+audit pipeline whenever a .rb file is modified.
It's useful during development to catch a newly-added unprotected
endpoint as soon as it's routed.

Example:
  shadowrail watch                          # Watch the current Rails app
  shadowrail watch ./api ./admin            # Watch multiple Rails roots
  shadowrail watch --debounce 1000          # Wait 1s before re-auditing
  shadowrail watch --on-change "make test"  # Run a command after each pass`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", 500, "debounce duration in milliseconds")
	watchCmd.Flags().StringVar(&watchOnChange, "on-change", "", "command to run after each re-generation")
}

// Watcher handles file watching and spec regeneration.
type Watcher struct {
	cfg           *config.Config
	watcher       *fsnotify.Watcher
	paths         []string
	debounce      time.Duration
	onChangeCmd   string
	mu            sync.Mutex
	lastRegen     time.Time
	pendingChange bool
}

// NewWatcher creates a new Watcher instance.
func NewWatcher(cfg *config.Config, paths []string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	debounce := time.Duration(cfg.Watch.Debounce) * time.Millisecond
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		cfg:         cfg,
		watcher:     fsWatcher,
		paths:       paths,
		debounce:    debounce,
		onChangeCmd: cfg.Watch.OnChange,
	}, nil
}

// Close closes the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch starts watching for file changes.
func (w *Watcher) Watch(ctx context.Context) error {
	for _, path := range w.paths {
		if err := w.addPath(path); err != nil {
			return fmt.Errorf("failed to add watch path %s: %w", path, err)
		}
	}

	if err := w.regenerate(); err != nil {
		printError("Initial generation failed: %v", err)
	}

	var debounceTimer *time.Timer
	var debounceTimerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if !w.shouldWatch(event.Name) {
				continue
			}

			printVerbose("File changed: %s", event.Name)

			debounceTimerMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				if err := w.regenerate(); err != nil {
					printError("Regeneration failed: %v", err)
				}
			})
			debounceTimerMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			printError("Watch error: %v", err)
		}
	}
}

// addPath adds a path and its subdirectories to the watcher.
func (w *Watcher) addPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return w.watcher.Add(absPath)
	}

	return filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip inaccessible paths
		}

		if info.IsDir() {
			base := filepath.Base(path)
			if base == "vendor" || base == "node_modules" || base == "tmp" || base == "log" ||
				(strings.HasPrefix(base, ".") && base != ".") {
				return filepath.SkipDir
			}
			for _, exclude := range w.cfg.Source.Exclude {
				if matched, _ := filepath.Match(exclude, base); matched {
					return filepath.SkipDir
				}
			}

			printVerbose("Watching: %s", path)
			return w.watcher.Add(path)
		}
		return nil
	})
}

// shouldWatch checks if a file should trigger a re-audit.
func (w *Watcher) shouldWatch(path string) bool {
	if filepath.Ext(path) != ".rb" {
		return false
	}

	for _, pattern := range w.cfg.Source.Exclude {
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return false
		}
	}

	return true
}

// regenerate re-runs the full pipeline, rewrites the output spec, and
// prints the unprotected/unknown endpoints the way audit does.
func (w *Watcher) regenerate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	printInfo("Regenerating specification...")
	start := time.Now()

	doc, diags, err := generateSpecFromPaths(w.cfg, w.paths)
	if err != nil {
		return err
	}
	printDiagnostics(diags)

	writer := openapi.NewWriter()
	if err := writer.WriteFile(doc, w.cfg.Output, w.cfg.Format); err != nil {
		return fmt.Errorf("failed to write spec: %w", err)
	}

	elapsed := time.Since(start)
	printInfo("Specification regenerated in %v: %s (%d path(s))",
		elapsed.Round(time.Millisecond), w.cfg.Output, len(doc.Paths))

	shown := 0
	for _, f := range collectFindings(doc) {
		if f.AuthStatus != "UNPROTECTED" && f.AuthStatus != "unknown" {
			continue
		}
		shown++
		printInfo("  %-7s %-40s %-14s %s#%s (%s)", f.Method, f.Path, f.AuthStatus, f.Controller, f.Action, f.Source)
	}
	printInfo("%d endpoint(s) with no resolvable authentication filter", shown)

	w.lastRegen = time.Now()

	if w.onChangeCmd != "" {
		if err := w.runOnChangeCmd(); err != nil {
			printError("On-change command failed: %v", err)
		}
	}

	return nil
}

// runOnChangeCmd executes the on-change command.
func (w *Watcher) runOnChangeCmd() error {
	printVerbose("Running on-change command: %s", w.onChangeCmd)

	cmd := exec.Command("sh", "-c", w.onChangeCmd)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if watchDebounce > 0 {
		cfg.Watch.Debounce = watchDebounce
	}
	if watchOnChange != "" {
		cfg.Watch.OnChange = watchOnChange
	}
	if output != "" {
		cfg.Output = output
	}
	if format != "" {
		cfg.Format = format
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Source.Paths
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	printVerbose("Watch configuration:")
	printVerbose("  Debounce: %dms", cfg.Watch.Debounce)
	if cfg.Watch.OnChange != "" {
		printVerbose("  On change: %s", cfg.Watch.OnChange)
	}
	printVerbose("  Paths: %s", strings.Join(paths, ", "))

	watcher, err := NewWatcher(cfg, paths)
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		printInfo("\nShutting down watcher...")
		cancel()
	}()

	printInfo("Watching for changes in: %s", strings.Join(paths, ", "))
	printInfo("Press Ctrl+C to stop")

	return watcher.Watch(ctx)
}
