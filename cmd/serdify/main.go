package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/reoring/serdify/i18n"
	"github.com/reoring/serdify/internal/logging"
)

const version = "0.1.0"

// errFailed is returned when at least one input did not pass.
var errFailed = errors.New("validation failed")

type cli struct {
	LogLevel  string `help:"Log level." default:"warn" enum:"debug,info,warn,error" env:"SERDIFY_LOG_LEVEL"`
	LogFormat string `help:"Log format." default:"text" enum:"text,json" env:"SERDIFY_LOG_FORMAT"`
	LogFile   string `help:"Write logs to this file (rotated) instead of stderr." type:"path" env:"SERDIFY_LOG_FILE"`
	Lang      string `help:"Language of problem messages." default:"en" enum:"en,ja" env:"SERDIFY_LANG"`

	Check   checkCmd         `cmd:"" help:"Decode files against a shape and print problem documents."`
	Schema  schemaCmd        `cmd:"" help:"Print the JSON Schema of a shape."`
	Version kong.VersionFlag `help:"Show version information."`
}

// env is bound into every command's Run.
type env struct {
	ctx    context.Context
	out    io.Writer
	logger *slog.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("serdify"),
		kong.Description("Decode JSON or YAML against a shape and report every problem at once."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	cfg := logging.DefaultConfig()
	cfg.Level, cfg.Format, cfg.FilePath = c.LogLevel, c.LogFormat, c.LogFile
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "serdify: logging: %v\n", err)
		return 2
	}
	defer func() { _ = cleanup() }()

	i18n.SetLanguage(c.Lang)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = kctx.Run(&env{ctx: ctx, out: stdout, logger: logger})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFailed):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "serdify: %v\n", err)
		return 2
	}
}
