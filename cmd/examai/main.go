package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/castrumai/examai/internal/corpus"
	"github.com/castrumai/examai/internal/exam"
	"github.com/castrumai/examai/internal/generate"
	"github.com/castrumai/examai/internal/grade"
	"github.com/castrumai/examai/internal/handler"
	"github.com/castrumai/examai/internal/llm"
	"github.com/castrumai/examai/internal/retrieve"
	"github.com/castrumai/examai/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "examai",
		Short: "Exam generation and evaluation API powered by LLMs",
	}

	serve := serveCmd()
	root.AddCommand(serve)

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `examai --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP exam API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "examai.db", "SQLite exam record database path")
	f.String("llm-url", "", "OpenAI-compatible API base URL (empty = default endpoint)")
	f.String("llm-key", "", "API key for the LLM endpoint")
	f.String("llm-model", "gpt-4o", "Model used for question generation")
	f.String("judge-model", "gpt-4o", "Model used for answer grading")
	f.String("embed-model", "text-embedding-3-small", "Model used for embeddings")
	f.String("search-db-url", "", "PostgreSQL URL of the passage search database (pgvector)")
	f.Int("batch-size", generate.DefaultBatchSize, "Questions per generation/grading batch")
	f.String("api-key", "", "API key clients must present (or set EXAMAI_API_KEY)")
	f.String("api-key-hash", "", "bcrypt hash of the client API key (wins over api-key)")
	f.String("api-key-header", handler.DefaultAPIKeyHeader, "Header carrying the client API key")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXAMAI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("examai")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/examai")
	v.AddConfigPath("/etc/examai")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := context.Background()

	if v.GetString("api-key") == "" && v.GetString("api-key-hash") == "" {
		return fmt.Errorf("either --api-key or --api-key-hash must be set")
	}

	// Open the record database.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Create LLM clients. The generator and the judge may run on different
	// models behind the same endpoint.
	genClient := llm.New(
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
		v.GetString("embed-model"),
	)
	if err := genClient.Ping(ctx); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	judgeClient := genClient
	if v.GetString("judge-model") != v.GetString("llm-model") {
		judgeClient = llm.New(
			v.GetString("llm-url"),
			v.GetString("llm-key"),
			v.GetString("judge-model"),
			v.GetString("embed-model"),
		)
	}
	slog.Info("LLM endpoint OK",
		"url", v.GetString("llm-url"),
		"model", v.GetString("llm-model"),
		"judge_model", v.GetString("judge-model"),
	)

	// The file matcher embeds every corpus file name once at startup.
	matcher, err := corpus.NewFileMatcher(ctx, genClient)
	if err != nil {
		return fmt.Errorf("build file matcher: %w", err)
	}

	// Passage search database.
	searcher, err := retrieve.NewPgSearcher(ctx, v.GetString("search-db-url"))
	if err != nil {
		return fmt.Errorf("open search database: %w", err)
	}
	defer searcher.Close()

	retriever := retrieve.New(searcher, genClient, matcher)
	generator := generate.New(genClient, retriever, v.GetInt("batch-size"))
	grader := grade.New(judgeClient, v.GetInt("batch-size"))
	svc := exam.NewService(db, generator, grader)

	h := handler.New(svc, genClient, handler.AuthConfig{
		Header:  v.GetString("api-key-header"),
		Key:     v.GetString("api-key"),
		KeyHash: v.GetString("api-key-hash"),
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"model", v.GetString("llm-model"),
		"judge_model", v.GetString("judge-model"),
		"embed_model", v.GetString("embed-model"),
		"batch_size", v.GetInt("batch-size"),
	)
	return http.ListenAndServe(addr, r)
}
