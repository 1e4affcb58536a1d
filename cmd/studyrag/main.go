package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"studyrag/internal/config"
	"studyrag/internal/logger"
	"studyrag/internal/tui"
)

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], runProgram); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runProgram(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// run parses args, wires the components and hands the model to start.
// Deferred cleanup, including closing the log file, runs before it returns.
func run(args []string, start func(tea.Model) error) error {
	fs := flag.NewFlagSet("studyrag", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file (optional; uses ~/.config/studyrag/config.yaml if not provided)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: studyrag [--config=config.yaml] [document.txt ...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	var cfg *config.AppConfig
	var err error
	path := *cfgPath
	if path == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	lg, closer, err := logger.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer closer.Close()
	lg.Info("config_loaded", "path", path)

	components, err := build(cfg, lg, tui.MarkChange)
	if err != nil {
		lg.Error("startup_failed", "error", err.Error())
		return fmt.Errorf("startup failed: %w", err)
	}

	doc, name, err := readDocuments(fs.Args())
	if err != nil {
		lg.Error("startup_failed", "error", err.Error())
		return fmt.Errorf("failed to read document: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := tui.New(ctx, components.search, components.answerer, components.assist, tui.Options{
		NumResults:   cfg.Search.NumResults,
		Document:     doc,
		DocumentName: name,
	})
	if err := start(m); err != nil {
		lg.Error("tui_exited", "error", err.Error())
		return err
	}
	lg.Info("tui_exited")
	return nil
}

// readDocuments concatenates the given files into one study document.
func readDocuments(paths []string) (string, string, error) {
	if len(paths) == 0 {
		return "", "", nil
	}
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", "", err
		}
		parts = append(parts, strings.TrimSpace(string(data)))
	}
	name := filepath.Base(paths[0])
	if len(paths) > 1 {
		name = fmt.Sprintf("%s +%d more", name, len(paths)-1)
	}
	return strings.Join(parts, "\n\n"), name, nil
}
