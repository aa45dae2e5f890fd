package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/reoring/jsonleaf"
)

// CLI represents the command-line interface
type CLI struct {
	Config        string `help:"YAML configuration file." short:"c" type:"path"`
	Driver        string `help:"JSON tokenizer: go-json or encoding/json."`
	LogLevel      string `help:"Log level: debug, info, warn or error."`
	MaxNesting    int    `help:"Fail when containers nest deeper than this (0 = unlimited)."`
	MaxBytes      int64  `help:"Fail after reading more than this many input bytes (0 = unlimited)."`
	DuplicateKeys string `help:"Reaction to repeated object keys: ignore, warn or error."`
	Verbose       bool   `help:"Print status lines to stderr." short:"v"`

	Leaves  LeavesCmd  `cmd:"" help:"Flatten JSON into path records."`
	Types   TypesCmd   `cmd:"" help:"List leaf paths with their types."`
	Rebuild RebuildCmd `cmd:"" help:"Rebuild objects from path records."`
	Extract ExtractCmd `cmd:"" help:"Flatten, filter and rebuild objects in one pass."`
}

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type exitCode int

func main() {
	if err := loadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("jsonleaf"),
		kong.Description("Flatten JSON into path/value leaves, filter them and rebuild objects."),
		kong.DefaultEnvars("JSONLEAF"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	a, err := newApp(ctx, &cli, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if err := kctx.Run(a); err != nil {
		color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", err)
		var ce *jsonleaf.ConfigError
		if errors.As(err, &ce) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

// app carries the resolved global settings into every command.
type app struct {
	ctx      context.Context
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	log      *slog.Logger
	settings settings
	verbose  bool
}

func newApp(ctx context.Context, cli *CLI, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	s, err := resolveSettings(cli)
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: s.level}))
	log.Debug("settings",
		slog.String("driver", s.driver.Name()),
		slog.Int("max_nesting", s.maxNesting),
		slog.Int64("max_bytes", s.maxBytes),
		slog.String("config", cli.Config),
	)
	return &app{
		ctx:      ctx,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		log:      log,
		settings: s,
		verbose:  cli.Verbose,
	}, nil
}

func (a *app) status(format string, args ...any) {
	if !a.verbose {
		return
	}
	color.New(color.FgGreen).Fprintf(a.stderr, format+"\n", args...)
}
