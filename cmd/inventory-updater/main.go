package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/inventory-updater/internal/alma"
	"github.com/zombor/inventory-updater/internal/capture"
	"github.com/zombor/inventory-updater/internal/console"
	"github.com/zombor/inventory-updater/internal/inventory"
	"github.com/zombor/inventory-updater/internal/report"
	"github.com/zombor/inventory-updater/internal/web"
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

	fs := ff.NewFlagSet("inventory-updater")
	var (
		_              = fs.StringLong("config", "", "Plain config file with one 'flag value' per line (optional)")
		apiKey         = fs.StringLong("api-key", "", "Alma API key")
		baseURL        = fs.StringLong("base-url", "", "Alma API base URL, e.g. https://api-na.hosted.exlibrisgroup.com/almaws/v1")
		settingsPath   = fs.StringLong("settings", "", "YAML settings file: headers, status labels, default message, theme (optional)")
		policy         = fs.StringLong("policy", string(inventory.PolicyWarn), "Items with a process status: 'warn' updates and warns, 'hold' skips the update")
		timeout        = fs.DurationLong("timeout", alma.DefaultTimeout, "Time limit for one scan")
		mode           = fs.StringLong("mode", "console", "Interface: 'console' or 'web'")
		port           = fs.IntLong("port", 8080, "HTTP server port (web mode)")
		dbPath         = fs.StringLong("db", "inventory.db", "Scan journal file path")
		logFile        = fs.StringLong("log-file", "inventory_update.log", "Scan log file path")
		captureType    = fs.StringLong("capture", "none", "Barcode capture from images: 'none', 'gemini', 'ollama' or 'anthropic' (web mode)")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama model name")
		anthropicKey   = fs.StringLong("anthropic-key", "", "Anthropic API key (or set ANTHROPIC_API_KEY env var)")
		anthropicModel = fs.StringLong("anthropic-model", "claude-sonnet-4-5", "Anthropic model name")
		reportSchedule = fs.StringLong("report-schedule", "", "Cron expression for summary reports, e.g. '0 18 * * 1-5' (optional)")
		reportDir      = fs.StringLong("report-dir", "./reports", "Report directory path")
		slackToken     = fs.StringLong("slack-token", "", "Slack bot token for posting reports (optional)")
		slackChannel   = fs.StringLong("slack-channel", "", "Slack channel ID for reports")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		_              = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVENTORY"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logOut, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logOut.Close()

	// the console owns the terminal; its log goes to the file only
	var logSink io.Writer = logOut
	if *mode != "console" {
		logSink = io.MultiWriter(os.Stderr, logOut)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logSink, nil)))

	cfg := inventory.Config{
		APIKey:      *apiKey,
		BaseURL:     *baseURL,
		Policy:      inventory.Policy(*policy),
		ScanTimeout: *timeout,
	}
	if *settingsPath != "" {
		settings, err := inventory.LoadSettings(*settingsPath)
		if err != nil {
			slog.Error("Failed to load settings", "path", *settingsPath, "error", err)
			os.Exit(1)
		}
		cfg.ApplySettings(settings)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	client, err := alma.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Headers, cfg.ScanTimeout)
	if err != nil {
		slog.Error("Failed to initialize Alma client", "error", err)
		os.Exit(1)
	}

	slog.Info("Initializing journal...", "path", *dbPath)
	journal, err := inventory.NewBoltJournal(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	service := inventory.NewService(cfg, client, journal)
	slog.Info("Inventory updater started", "version", version, "mode", *mode, "policy", cfg.Policy)

	reports, err := report.NewLocalStorage(*reportDir)
	if err != nil {
		slog.Error("Failed to initialize report storage", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if *reportSchedule != "" {
		sched, err := report.ParseSchedule(*reportSchedule)
		if err != nil {
			slog.Error("Invalid report schedule", "error", err)
			os.Exit(1)
		}

		var notifier report.Notifier
		if *slackToken != "" {
			notifier, err = report.NewSlackNotifier(*slackToken, *slackChannel, "")
			if err != nil {
				slog.Error("Failed to initialize Slack", "error", err)
				os.Exit(1)
			}
		}

		reporter := report.NewReporter(journal, reports, notifier)
		g.Go(func() error {
			return report.Schedule(ctx, sched, reporter)
		})
	}

	switch *mode {
	case "console":
		g.Go(func() error {
			// leaving the console ends the program
			defer stop()
			return console.New(service, os.Stdin, os.Stdout).Run(ctx)
		})

	case "web":
		reader, err := newReader(*captureType, *geminiKey, *geminiModel, *ollamaURL, *ollamaModel, *anthropicKey, *anthropicModel)
		if err != nil {
			slog.Error("Failed to initialize barcode capture", "error", err)
			os.Exit(1)
		}
		if reader != nil {
			defer reader.Close()
		}

		deps := web.Deps{Journal: journal, Reader: reader, Reports: reports}
		server := web.NewServer(service, deps, web.BasicAuth{
			Username: *authUser,
			Password: *authPass,
		})

		addr := fmt.Sprintf(":%d", *port)
		g.Go(func() error {
			return server.Start(ctx, addr)
		})
		slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
		if *authUser != "" || *authPass != "" {
			slog.Info("Basic auth enabled", "user", *authUser)
		}

	default:
		slog.Error("Invalid mode", "mode", *mode, "valid", "console or web")
		os.Exit(1)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutting down...")
}

// newReader builds the barcode capture provider; "none" returns nil
func newReader(kind, geminiKey, geminiModel, ollamaURL, ollamaModel, anthropicKey, anthropicModel string) (capture.Reader, error) {
	switch kind {
	case "", "none":
		return nil, nil
	case "gemini":
		if geminiKey == "" {
			geminiKey = os.Getenv("GEMINI_API_KEY")
		}
		if geminiKey == "" {
			return nil, errors.New("gemini api key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini capture...", "model", geminiModel)
		return capture.NewGemini(geminiKey, geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama capture...", "url", ollamaURL, "model", ollamaModel)
		return capture.NewOllama(ollamaURL, ollamaModel)
	case "anthropic":
		if anthropicKey == "" {
			anthropicKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		slog.Info("Initializing Anthropic capture...", "model", anthropicModel)
		return capture.NewAnthropic(anthropicKey, anthropicModel)
	}
	return nil, fmt.Errorf("invalid capture type %q, valid: none, gemini, ollama, anthropic", kind)
}
