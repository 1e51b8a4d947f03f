package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kaziai/core/internal/config"
	"github.com/kaziai/core/orchestrator"
)

// DispatchCmd runs a single message through the full routing+dispatch
// pipeline and prints the resulting agent outputs, without starting a
// server.
type DispatchCmd struct {
	Message string `arg:"" help:"User message to route and dispatch."`
	UserID  int64  `help:"User ID the dispatch runs as." default:"0"`
	JSON    bool   `help:"Print results as JSON instead of plain text."`
}

func (c *DispatchCmd) Run(cli *CLI) error {
	ctx := context.Background()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	svc, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	routing := svc.Router.Route(c.Message, false, false)
	results := svc.Orchestrator.Dispatch(ctx, routing, c.Message, orchestrator.DispatchOptions{UserID: c.UserID})

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Intent  string                     `json:"intent"`
			Results []orchestrator.AgentResult `json:"results"`
		}{Intent: routing.Intent, Results: results})
	}

	fmt.Printf("intent: %s\n\n", routing.Intent)
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Printf("[%s: %s]\n%s\n\n", r.AgentName, status, r.Output)
	}
	return nil
}
