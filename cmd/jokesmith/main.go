package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"JokeSmith/internal/archive"
	"JokeSmith/internal/config"
	"JokeSmith/internal/feedback"
	"JokeSmith/internal/jokebot"
	"JokeSmith/internal/llm"
	"JokeSmith/internal/refine"
	"JokeSmith/internal/roles"
	"JokeSmith/internal/server"
	"JokeSmith/internal/telemetry"
)

func main() {
	// .env is optional; plain environment variables still apply.
	_ = godotenv.Load()

	cfg := config.Load()
	var noArchive bool

	flag.StringVar(&cfg.Performer.Provider, "performer-provider", cfg.Performer.Provider, "Performer LLM provider (openai|groq|ollama|mock)")
	flag.StringVar(&cfg.Performer.Model, "performer-model", "", "Performer model (default: catalog default for the provider)")
	flag.StringVar(&cfg.Critic.Provider, "critic-provider", cfg.Critic.Provider, "Critic LLM provider (openai|groq|ollama|mock)")
	flag.StringVar(&cfg.Critic.Model, "critic-model", "", "Critic model (default: catalog default for the provider)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&cfg.Serve, "serve", false, "Run the HTTP API instead of the interactive loop")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address (with -serve)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the session archive database")
	flag.StringVar(&cfg.Catalog, "catalog", "", "Path to a YAML model catalog override")
	flag.StringVar(&cfg.OllamaURL, "ollama-url", cfg.OllamaURL, "Ollama daemon URL")
	flag.BoolVar(&noArchive, "no-archive", false, "Disable session archiving")
	flag.Parse()

	logger, err := telemetry.InitLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	catalog, err := config.LoadCatalog(cfg.Catalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load model catalog: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(catalog); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	performerClient, err := buildClient(cfg, cfg.Performer, tracer, meter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build performer client: %v\n", err)
		os.Exit(1)
	}
	criticClient, err := buildClient(cfg, cfg.Critic, tracer, meter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build critic client: %v\n", err)
		os.Exit(1)
	}

	gen := roles.NewGenerator(performerClient)
	eval := roles.NewEvaluator(criticClient, feedback.NewDecoder(logger))

	var store *archive.Archive
	if !noArchive {
		store, err = archive.Open(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open archive: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	if cfg.Serve {
		if err := serve(cfg, gen, eval, store, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	bot := jokebot.NewJokeBot(cfg, refine.NewSession(gen, eval, logger), store, logger)
	if err := bot.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildClient constructs the LLM client for one role.
func buildClient(cfg config.Config, role config.RoleConfig, tracer trace.Tracer, meter metric.Meter) (llm.Client, error) {
	switch role.Provider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			Provider: config.ProviderOpenAI,
			Model:    role.Model,
			APIKey:   cfg.APIKey(config.ProviderOpenAI),
			Tracer:   tracer,
			Meter:    meter,
		})
	case config.ProviderGroq:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			Provider: config.ProviderGroq,
			Model:    role.Model,
			APIKey:   cfg.APIKey(config.ProviderGroq),
			BaseURL:  config.GroqBaseURL,
			Tracer:   tracer,
			Meter:    meter,
		})
	case config.ProviderOllama:
		return llm.NewOllamaClient(llm.OllamaConfig{
			BaseURL: cfg.OllamaURL,
			Model:   role.Model,
			Tracer:  tracer,
			Meter:   meter,
		})
	case config.ProviderMock:
		return llm.NewMockClient(), nil
	}
	return nil, fmt.Errorf("unknown provider %q", role.Provider)
}

// serve runs the HTTP API with graceful shutdown.
func serve(cfg config.Config, gen *roles.Generator, eval *roles.Evaluator, store *archive.Archive, logger *slog.Logger) error {
	handler := server.NewHandler(func() *refine.Session {
		return refine.NewSession(gen, eval, logger)
	}, store, logger)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // LLM round-trips are slow
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
