// cmd/showharvest/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jupiterbroadcasting/showharvest/internal/config"
	"github.com/jupiterbroadcasting/showharvest/internal/episode"
	"github.com/jupiterbroadcasting/showharvest/internal/fireside"
	"github.com/jupiterbroadcasting/showharvest/internal/identity"
	"github.com/jupiterbroadcasting/showharvest/internal/legacysite"
	"github.com/jupiterbroadcasting/showharvest/internal/monitoring"
	"github.com/jupiterbroadcasting/showharvest/internal/output"
	"github.com/jupiterbroadcasting/showharvest/internal/pipeline"
	"github.com/jupiterbroadcasting/showharvest/internal/scraper"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// main handles CLI arguments and routes to the appropriate functions
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runHarvest()

	case "validate":
		validateConfig()

	case "version", "--version":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runHarvest() {
	configFile := flagValue("-config", "config.yml")
	mode := flagValue("-mode", "full")
	if mode != "full" && mode != "latest" {
		fmt.Fprintf(os.Stderr, "Error: unknown mode '%s' (want full or latest)\n", mode)
		os.Exit(1)
	}
	latestOnly := mode == "latest"

	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if limit := flagValue("-limit", ""); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "Error: -limit wants a positive number, got %q\n", limit)
			os.Exit(1)
		}
		cfg.Scraper.LatestOnlyLimit = n
	}

	level := utils.ParseLevel(cfg.LogLevel)
	if hasFlag("-v") || hasFlag("--verbose") {
		level = utils.DebugLevel
	}
	logger := utils.NewLoggerWithLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := executeHarvest(ctx, cfg, logger, latestOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Episodes built:   %d\n", summary.EpisodesBuilt)
	fmt.Printf("Episodes skipped: %d\n", summary.EpisodesSkipped)
	fmt.Printf("Episodes failed:  %d\n", summary.EpisodesFailed)
	fmt.Printf("People resolved:  %d\n", summary.PeopleResolved)
	fmt.Printf("Sponsors found:   %d\n", summary.SponsorsFound)
	if len(summary.Errors) > 0 {
		fmt.Printf("Errors:           %d (see log)\n", len(summary.Errors))
	}
}

// executeHarvest wires the collaborators together and runs the three
// harvest stages.
func executeHarvest(ctx context.Context, cfg *config.Config, logger utils.Logger, latestOnly bool) (*pipeline.Summary, error) {
	client := scraper.NewClient(scraper.ClientConfig{
		Timeout:       cfg.Scraper.RequestTimeout,
		RetryAttempts: cfg.Scraper.RetryAttempts,
		RetryDelay:    cfg.Scraper.RetryDelay,
		RateLimit:     cfg.Scraper.RateLimit,
		RateBurst:     cfg.Scraper.RateBurst,
		UserAgents:    cfg.Scraper.UserAgents,
	})

	resolver := identity.NewResolver(cfg.UsernamesMap)
	sponsorStore := identity.NewSponsorStore()
	fetcher := fireside.NewFetcher(client, logger)
	outputManager := output.NewManager(cfg.Output.DataDir, cfg.DataDontOverride, latestOnly, logger)

	metrics := monitoring.NewMetrics()
	var status *monitoring.Server
	if cfg.Monitoring.Enabled {
		status = monitoring.NewServer(cfg.Monitoring.ListenAddress, metrics, logger)
		go func() {
			if err := status.Start(ctx); err != nil {
				logger.Errorf("Status server failed: %v", err)
			}
		}()
	}

	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		Config: cfg,
		Crawler: legacysite.NewCrawler(legacysite.CrawlerConfig{
			Client:          client,
			Logger:          logger,
			TitleExceptions: cfg.TitleExceptions,
			LatestOnly:      latestOnly,
			LatestOnlyLimit: cfg.Scraper.LatestOnlyLimit,
			MaxConcurrency:  cfg.Scraper.MaxConcurrency,
		}),
		Fetcher:      fetcher,
		RSSParser:    fireside.NewRSSParser(client, logger),
		People:       fireside.NewPeopleScraper(client, logger, resolver, outputManager.StaticDir()),
		Builder:      episode.NewBuilder(client, fetcher, resolver, sponsorStore, logger),
		PeopleStore:  identity.NewPeopleStore(latestOnly),
		SponsorStore: sponsorStore,
		Output:       outputManager,
		Metrics:      metrics,
		Status:       status,
		Logger:       logger,
		LatestOnly:   latestOnly,
	})

	return runner.Run(ctx)
}

func validateConfig() {
	configFile := flagValue("-config", "config.yml")

	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Configuration file '%s' is valid (%d shows)\n", configFile, len(cfg.Shows))
}

// hasFlag checks if a flag is present in command line arguments
func hasFlag(flag string) bool {
	for _, arg := range os.Args {
		if arg == flag {
			return true
		}
	}
	return false
}

// flagValue returns the argument following flag, or fallback.
func flagValue(flag, fallback string) string {
	for i, arg := range os.Args {
		if arg == flag && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
	}
	return fallback
}

// printUsage displays help information
func printUsage() {
	fmt.Println("showharvest - Jupiter Broadcasting episode metadata harvester")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  showharvest run [-config config.yml] [-mode full|latest] [-limit N]")
	fmt.Println("  showharvest validate [-config config.yml]")
	fmt.Println("  showharvest version")
	fmt.Println("  showharvest help")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config <file>   Configuration file (default config.yml)")
	fmt.Println("  -mode <mode>     full rebuilds missing episodes; latest refreshes the newest ones")
	fmt.Println("  -limit <n>       Episodes per show in latest mode")
	fmt.Println("  -v, --verbose    Enable debug logging")
}

// printVersion displays version information
func printVersion() {
	fmt.Printf("showharvest %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
	fmt.Printf("Git commit: %s\n", gitCommit)
}
