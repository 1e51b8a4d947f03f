package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kaziai/core/internal/config"
)

// CLI defines kaziaid's command-line interface.
type CLI struct {
	Dispatch DispatchCmd `cmd:"" help:"Route and dispatch a single message."`
	Serve    ServeCmd    `cmd:"" help:"Start a long-lived dispatch server."`

	Config   string `short:"c" help:"Path to config file." default:"kaziaid.yaml" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info"`
}

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		slog.Warn("kaziaid: loading .env files", "error", err)
	}

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("kaziaid"),
		kong.Description("KaziAI career platform orchestration core"),
		kong.UsageOnError(),
	)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cli.LogLevel)})))

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
