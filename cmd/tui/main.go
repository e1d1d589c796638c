package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/pairlist/pairlist/internal/config"
	"github.com/pairlist/pairlist/internal/core"
	"github.com/pairlist/pairlist/internal/tui"
)

func main() {
	// .env is optional; when present it overrides the environment the same
	// way the server entrypoint does. Nothing may print to stdout here or
	// the TUI screen gets corrupted.
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	service := core.NewService(core.Options{
		MaxFileSize:   cfg.Upload.MaxFileSize,
		Retention:     cfg.Upload.Retention,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
	})

	// One-shot mode: convert the given file, print the output, exit. Keeps
	// the converter usable from scripts (pairlist roster.csv > pairs.txt).
	if len(os.Args) > 1 {
		runOnce(service, cfg.Upload.Timeout, os.Args[1])
		return
	}

	m := tui.NewModel(service, cfg.Upload.Timeout)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runOnce(service *core.Service, timeout time.Duration, path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conv, err := service.Convert(ctx, filepath.Base(path), f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+core.FormatUserError(err))
		os.Exit(1)
	}
	if len(conv.Records) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no valid data rows found in the file")
		os.Exit(1)
	}

	fmt.Println(conv.Output)
}
