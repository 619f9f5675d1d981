// Command codegraphd runs the agent-memory and code-intelligence MCP
// server described in SPEC_FULL.md: a bi-temporal property graph plus
// vector index behind a JSON-RPC/MCP tool surface, served over stdio or
// HTTP/SSE.
//
// Configuration is read from (in ascending precedence): built-in
// defaults, a TOML config file (--config, $CODEGRAPHD_CONFIG,
// ./codegraphd.toml, or ~/.config/codegraphd/codegraphd.toml), then
// environment variables ($MEMGRAPH_*, $QDRANT_*, $CODEGRAPHD_*).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/codegraphd/codegraphd/internal/archrules"
	"github.com/codegraphd/codegraphd/internal/builder"
	"github.com/codegraphd/codegraphd/internal/cmdexec"
	"github.com/codegraphd/codegraphd/internal/community"
	"github.com/codegraphd/codegraphd/internal/config"
	"github.com/codegraphd/codegraphd/internal/content"
	"github.com/codegraphd/codegraphd/internal/contextpack"
	"github.com/codegraphd/codegraphd/internal/coordination"
	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/docs"
	"github.com/codegraphd/codegraphd/internal/embedding"
	"github.com/codegraphd/codegraphd/internal/episodes"
	"github.com/codegraphd/codegraphd/internal/graphstore"
	"github.com/codegraphd/codegraphd/internal/jobs"
	"github.com/codegraphd/codegraphd/internal/mcp"
	"github.com/codegraphd/codegraphd/internal/retrieval"
	"github.com/codegraphd/codegraphd/internal/scheduler"
	"github.com/codegraphd/codegraphd/internal/session"
	"github.com/codegraphd/codegraphd/internal/summarizer"
	"github.com/codegraphd/codegraphd/internal/tools"
	"github.com/codegraphd/codegraphd/internal/vectorstore"
	"github.com/codegraphd/codegraphd/internal/watcher"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "info" {
		runInfo(os.Args[2:])
		return
	}
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "codegraphd: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("codegraphd", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a codegraphd.toml config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}
	logger.Info("starting codegraphd", "version", version, "transport", cfg.Transport.Mode)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	graphCfg := graphstore.DefaultConfig()
	graphCfg.Host, graphCfg.Port, graphCfg.User, graphCfg.Password = cfg.Memgraph.Host, cfg.Memgraph.Port, cfg.Memgraph.User, cfg.Memgraph.Password
	graph, err := graphstore.Open(ctx, graphCfg, logger)
	if err != nil {
		return fmt.Errorf("opening graph store: %w", err)
	}
	defer graph.Close(context.Background())

	vectorCfg := vectorstore.DefaultConfig()
	vectorCfg.Host, vectorCfg.Port = cfg.Qdrant.Host, cfg.Qdrant.Port
	vectorCfg.CollectionName, vectorCfg.VectorSize = cfg.Qdrant.CollectionName, cfg.Qdrant.VectorSize
	vectors, err := vectorstore.Open(ctx, vectorCfg, logger)
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	defer vectors.Close()

	embedder := embedding.NewHashing(int(cfg.Qdrant.VectorSize))
	sessions := session.NewManager()
	sched := scheduler.NewScheduler(logger)
	watchers := watcher.NewManager(logger)
	defer watchers.StopAll()

	retriever := retrieval.New(graph, vectors, embedder, nil)
	episodesEngine := episodes.New(graph, vectors, embedder)
	coordinator := coordination.New(graph, &episodeReflector{engine: episodesEngine})
	packBuilder := contextpack.New(graph, retriever, episodesEngine)
	docsEngine := docs.New(graph)
	communities := community.New(graph)
	archValidator := archrules.New(graph)
	commands := cmdexec.New(graph, cmdexec.Config{
		Timeout:     cfg.CommandTimeout(),
		OutputLimit: cfg.Command.OutputSizeLimitBytes,
	})

	parsers := builder.NewParserRegistry()
	// graphBuilder is declared before assignment so the AfterRebuild closure
	// below, which must reference it, captures the variable rather than a
	// value that doesn't exist yet.
	var graphBuilder *builder.Builder
	graphBuilder = builder.New(graph, parsers, summarizer.Heuristic{}, logger, 12*time.Second,
		func(rebuildCtx context.Context, projectID, txID string) {
			sched.RunOnce(rebuildCtx, &jobs.EmbeddingRegeneration{
				Graph: graph, Vectors: vectors, Retriever: retriever, Builder: graphBuilder,
				Embedder: embedder, ProjectID: projectID, Logger: logger,
			})
			sched.RunOnce(rebuildCtx, &jobs.CommunityRecomputation{Communities: communities, ProjectID: projectID, Logger: logger})
			sched.RunOnce(rebuildCtx, &jobs.StaleClaimSweep{Coordinator: coordinator, ProjectID: projectID, Logger: logger})
		})

	deps := tools.Deps{
		Sessions:    sessions,
		Graph:       graph,
		Vectors:     vectors,
		Retriever:   retriever,
		Builder:     graphBuilder,
		Episodes:    episodesEngine,
		Coordinator: coordinator,
		ContextPack: packBuilder,
		Docs:        docsEngine,
		Communities: communities,
		ArchRules:   archValidator,
		Commands:    commands,
		Scheduler:   sched,
		Watchers:    watchers,
	}

	dispatcher := dispatch.New()
	tools.RegisterAll(dispatcher, deps)

	registry := mcp.NewRegistry()
	dispatch.RegisterAll(dispatcher, registry)

	registry.RegisterPrompt(&content.GuidePrompt{})
	registry.RegisterPrompt(&content.WorkflowPrompt{})
	registry.RegisterResource(&content.EntityModelResource{})
	registry.RegisterResource(&content.ContractReferenceResource{})
	registry.RegisterResource(&content.ToolReferenceResource{})

	server := mcp.NewServer(registry, mcp.ServerInfo{Name: cfg.Server.Name, Version: version}, logger)

	sched.Start(ctx)
	defer sched.Stop()

	if cfg.Transport.Mode == "http" {
		httpServer := mcp.NewHTTPServer(server, sessions, cfg.Transport.CORSOrigins, logger)
		addr := cfg.Transport.Host + ":" + cfg.Transport.Port
		logger.Info("listening", "addr", addr)
		srv := &http.Server{Addr: addr, Handler: httpServer.Handler()}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	return server.Run(ctx)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
