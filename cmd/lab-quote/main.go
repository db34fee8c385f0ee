package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/lab-quote/internal/catalog"
	"github.com/zombor/lab-quote/internal/quote"
	"github.com/zombor/lab-quote/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// Local env files are optional; real environment variables win
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	fs := ff.NewFlagSet("lab-quote")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		catalogPath    = fs.StringLong("catalog", "", "Exam catalog JSON file (default: embedded catalog)")
		scannerType    = fs.StringLong("scanner", "gemini", "Extractor type: 'gemini', 'ollama' or 'mock'")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", scanning.DefaultGeminiModel, "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2.5vl, llama3.2-vision)")
		maxImageMB     = fs.IntLong("max-image-mb", 10, "Largest accepted upload in megabytes")
		maxDimension   = fs.IntLong("max-dimension", scanning.DefaultMaxDimension, "Longest image side sent to the model, in pixels")
		extractTimeout = fs.DurationLong("extract-timeout", quote.DefaultExtractTimeout, "Timeout for a single extraction call")
		logFormat      = fs.StringLong("log-format", "text", "Log format: 'text' or 'json'")
		logLevel       = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("LAB_QUOTE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := setupLogging(*logFormat, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Load the price catalog
	c, err := catalog.Load(*catalogPath)
	if err != nil {
		slog.Error("Failed to load exam catalog", "error", err)
		os.Exit(1)
	}

	extractor, err := newExtractor(*scannerType, *geminiKey, *geminiModel, *ollamaURL, *ollamaModel, *maxDimension)
	if err != nil {
		slog.Error("Failed to initialize extractor", "type", *scannerType, "error", err)
		os.Exit(1)
	}
	defer extractor.Close()

	// Initialize service
	quoteService := quote.NewServiceWithLimits(c, extractor, int64(*maxImageMB)<<20, *extractTimeout)

	// Initialize server
	server := quote.NewServer(quoteService)
	server.SetVersion(version)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started",
		"address", fmt.Sprintf("http://localhost%s", addr),
		"version", version,
		"extractor", extractor.Name(),
		"exams", c.Len(),
	)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
}

// newExtractor builds the configured extractor. Without a Gemini key the
// service still runs, answering every request with sample data.
func newExtractor(kind, geminiKey, geminiModel, ollamaURL, ollamaModel string, maxDimension int) (scanning.Extractor, error) {
	switch kind {
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Warn("No Gemini API key configured, using sample data. Set --gemini-key or GEMINI_API_KEY")
			return scanning.NewMock(), nil
		}
		slog.Info("Initializing Gemini extractor...", "model", geminiModel)
		gemini, err := scanning.NewGemini(apiKey, geminiModel, maxDimension)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	case "ollama":
		slog.Info("Initializing Ollama extractor...", "url", ollamaURL, "model", ollamaModel)
		ollama, err := scanning.NewOllama(ollamaURL, ollamaModel, maxDimension)
		if err != nil {
			return nil, err
		}
		return ollama, nil
	case "mock":
		slog.Info("Using sample data extractor")
		return scanning.NewMock(), nil
	default:
		return nil, fmt.Errorf("invalid extractor type %q, valid: gemini, ollama or mock", kind)
	}
}

func setupLogging(format, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	default:
		return fmt.Errorf("invalid log format %q, valid: text or json", format)
	}
	return nil
}
