// PostAssist server — HTTP API over the multi-team post generation
// workflow: queue workers, task store, and the agent graphs.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovokpus/PostAssist/pkg/agent"
	"github.com/ovokpus/PostAssist/pkg/api"
	"github.com/ovokpus/PostAssist/pkg/config"
	"github.com/ovokpus/PostAssist/pkg/governor"
	"github.com/ovokpus/PostAssist/pkg/graph"
	"github.com/ovokpus/PostAssist/pkg/llm"
	"github.com/ovokpus/PostAssist/pkg/models"
	"github.com/ovokpus/PostAssist/pkg/queue"
	"github.com/ovokpus/PostAssist/pkg/search"
	"github.com/ovokpus/PostAssist/pkg/store"
	"github.com/ovokpus/PostAssist/pkg/tools"
	"github.com/ovokpus/PostAssist/pkg/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	}

	logger := slog.Default()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting PostAssist",
		"version", version.Version,
		"http_port", cfg.HTTPPort,
		"model", cfg.LLM.Model)

	if !cfg.LLM.Configured() {
		logger.Warn("LLM_API_KEY is not set, generation requests will fail")
	}
	if !cfg.Search.Configured() {
		logger.Warn("SEARCH_API_KEY is not set, agents will work without web search")
	}

	// Task store: remote with one-way degradation, or in-process only when
	// STORE_URL is unset.
	var remote store.Store
	if cfg.Store.URL != "" {
		redisStore, err := store.NewRedisStore(cfg.Store.URL)
		if err != nil {
			logger.Error("Invalid STORE_URL", "error", err)
			os.Exit(1)
		}
		remote = redisStore
		logger.Info("Remote task store configured")
	} else {
		logger.Warn("STORE_URL unset, tasks live in-process only")
	}
	taskStore := store.NewFallback(remote, logger)

	gov := governor.New(
		cfg.Limits.MaxConcurrentGenerations,
		cfg.Limits.MaxConcurrentVerifications,
		cfg.Limits.VerificationTimeout,
	)

	var chat llm.ChatClient = llm.NewOpenAIClient(cfg.LLM)
	chat = llm.NewRetryingClient(chat, llm.DefaultRetryConfig(), cfg.LLM.CallTimeout)

	searchClient := search.NewClient(cfg.Search)
	registry := tools.NewRegistry(
		tools.NewWebSearchTool(searchClient),
		tools.NewResearchPaperTool(searchClient),
		tools.NewCreatePostTool(),
		tools.NewVerifyTechnicalTool(),
		tools.NewCheckStyleTool(),
	)

	meta, err := buildGraphs(cfg, chat, registry, logger)
	if err != nil {
		logger.Error("Failed to assemble agent graphs", "error", err)
		os.Exit(1)
	}

	pool := queue.NewPool(cfg.Queue, logger)
	executor := queue.NewExecutor(taskStore, cfg.Store.TTL, gov, meta, logger)
	service := queue.NewService(taskStore, cfg.Store.TTL, pool, executor, logger)
	verifier := queue.NewVerifier(gov, logger)

	server := api.NewServer(cfg, service, verifier, taskStore, logger)
	httpServer := server.HTTPServer()

	pool.Start(context.Background())
	logger.Info("Worker pool started", "workers", cfg.Queue.WorkerCount)

	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	pool.Stop()
	logger.Info("Shutdown complete")
}

// buildGraphs assembles the two team graphs and the meta graph from the
// role registry and the tool catalog.
func buildGraphs(cfg *config.Config, chat llm.ChatClient, registry *tools.Registry, logger *slog.Logger) (*graph.MetaGraph, error) {
	telemetry := &graph.Telemetry{}
	runtime := agent.NewRuntime(chat, cfg.LLM.Temperature, cfg.Limits.MaxToolRounds, logger)

	newTeam := func(teamName, supervisorKey string) (*graph.Team, error) {
		supCfg, err := cfg.Roles.GetSupervisor(supervisorKey)
		if err != nil {
			return nil, err
		}
		members := models.TeamMembers(teamName)
		roles := make([]agent.Role, 0, len(members))
		for _, name := range members {
			roleCfg, err := cfg.Roles.Get(name)
			if err != nil {
				return nil, err
			}
			selected, err := registry.Select(roleCfg.Tools)
			if err != nil {
				return nil, err
			}
			roles = append(roles, agent.Role{
				Name:         roleCfg.Name,
				SystemPrompt: roleCfg.SystemPrompt,
				Tools:        selected,
			})
		}
		supervisor := graph.NewSupervisor(supCfg, chat, cfg.LLM.Temperature, telemetry, logger)
		return graph.NewTeam(teamName, supervisor, roles, runtime, cfg.Limits.TeamRecursionLimit, logger), nil
	}

	contentTeam, err := newTeam(models.TeamContent, config.SupervisorContent)
	if err != nil {
		return nil, err
	}
	verificationTeam, err := newTeam(models.TeamVerification, config.SupervisorVerification)
	if err != nil {
		return nil, err
	}

	metaCfg, err := cfg.Roles.GetSupervisor(config.SupervisorMeta)
	if err != nil {
		return nil, err
	}
	metaSupervisor := graph.NewSupervisor(metaCfg, chat, cfg.LLM.Temperature, telemetry, logger)
	teams := []*graph.Team{contentTeam, verificationTeam}
	return graph.NewMetaGraph(metaSupervisor, teams, cfg.Limits.MetaRecursionLimit, logger), nil
}
