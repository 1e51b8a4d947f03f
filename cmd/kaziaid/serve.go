package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kaziai/core/goal"
	"github.com/kaziai/core/internal/config"
	"github.com/kaziai/core/orchestrator"
)

// ServeCmd starts a long-lived HTTP process exposing POST /dispatch and
// GET /metrics, running until SIGINT/SIGTERM, grounded on the teacher's
// ServeCmd (signal-driven context cancellation, --watch config reload).
type ServeCmd struct {
	Addr  string `help:"Address to listen on." default:":8080"`
	Watch bool   `help:"Watch the config file for changes and apply non-structural updates live."`
}

type dispatchRequest struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type dispatchResponse struct {
	Intent  string                     `json:"intent"`
	Results []orchestrator.AgentResult `json:"results"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("kaziaid: shutting down")
		cancel()
	}()

	var cfg *config.Config
	var watcher *config.Watcher
	if c.Watch {
		w, err := config.NewWatcher(cli.Config)
		if err != nil {
			return fmt.Errorf("starting config watcher: %w", err)
		}
		defer w.Close()
		watcher = w
		cfg = w.Current()
	} else {
		loaded, err := config.Load(cli.Config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	svc, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", svc.Metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/dispatch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req dispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
			return
		}

		// Orchestrator tunables may have been hot-reloaded since startup;
		// re-apply them before every dispatch.
		if watcher != nil {
			current := watcher.Current()
			svc.Orchestrator.Config.MaxSteps = current.Orchestrator.MaxSteps
			svc.Orchestrator.Config.MaxRetries = current.Orchestrator.MaxRetries
		}

		routing := svc.Router.Route(req.Message, false, false)
		results := svc.Orchestrator.Dispatch(r.Context(), routing, req.Message, orchestrator.DispatchOptions{UserID: req.UserID})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dispatchResponse{Intent: routing.Intent, Results: results})
	})

	mux.HandleFunc("/goals", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			UserID      int64  `json:"user_id"`
			GoalText    string `json:"goal_text"`
			UserContext string `json:"user_context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
			return
		}

		plan := svc.Planner.CreatePlan(req.GoalText, req.UserContext)
		goalID, err := svc.Planner.SavePlan(r.Context(), req.UserID, plan)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			GoalID string    `json:"goal_id"`
			Plan   goal.Plan `json:"plan"`
		}{GoalID: goalID, Plan: plan})
	})
	mux.HandleFunc("/goals/", func(w http.ResponseWriter, r *http.Request) {
		goalID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/goals/"), "/execute")
		if goalID == "" {
			http.Error(w, "missing goal id", http.StatusBadRequest)
			return
		}

		if strings.HasSuffix(r.URL.Path, "/execute") && r.Method == http.MethodPost {
			var events []goal.Event
			svc.Planner.AutoExecute(r.Context(), goalID, svc.Orchestrator.AsGoalDispatcher(), goal.DispatchOptions{}, func(e goal.Event) {
				events = append(events, e)
			})
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(events)
			return
		}

		if r.Method == http.MethodGet {
			status, err := svc.Planner.GetPlanStatus(r.Context(), goalID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if status == nil {
				http.Error(w, "goal not found", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(status)
			return
		}

		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	srv := &http.Server{Addr: c.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("kaziaid: server shutdown error", "error", err)
		}
	}()

	slog.Info("kaziaid: serving", "addr", c.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
