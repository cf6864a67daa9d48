package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/engagehub/internal/api"
	"github.com/engagehub/internal/billing"
	"github.com/engagehub/internal/cache"
	"github.com/engagehub/internal/catalog"
	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/config"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/email"
	"github.com/engagehub/internal/events"
	"github.com/engagehub/internal/health"
	"github.com/engagehub/internal/incident"
	"github.com/engagehub/internal/invite"
	"github.com/engagehub/internal/ledger"
	"github.com/engagehub/internal/onboarding"
	"github.com/engagehub/internal/outreach"
	"github.com/engagehub/internal/playbook"
	"github.com/engagehub/internal/policy"
	"github.com/engagehub/internal/reporting"
	"github.com/engagehub/internal/slack"
	"github.com/engagehub/internal/trust"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "config/config.yaml", "Configuration file path")
		showVersion = flag.Bool("version", false, "Show version information")
		help        = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *help {
		printHelp()
		return
	}
	if *showVersion {
		fmt.Printf("EngageHub version %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
		return
	}

	log.Printf("Starting EngageHub v%s (commit: %s, built: %s)", version, commit, date)

	os.Setenv("CONFIG_PATH", *configFile)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clock.System{}
	checker := health.NewChecker()

	// Event bus
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaPub, err := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			ClientID:     cfg.Kafka.ClientID,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to initialize event bus: %v", err)
		}
		defer kafkaPub.Close()
		if err := kafkaPub.InitializeTopics(ctx, 3, 1); err != nil {
			log.Printf("Failed to initialize topics: %v", err)
		}
		checker.Register(health.NewPingCheck("kafka", kafkaPub, 500*time.Millisecond))
		publisher = kafkaPub
	}

	// Report cache
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		defer redisCache.Close()
		checker.Register(health.NewPingCheck("redis", redisCache, 250*time.Millisecond))
	}
	reportCache := cache.NewReportCache(redisCache, cfg.Report.CacheTTL)

	// Stores
	directoryStore := directory.NewMemoryStore()
	sessionStore := catalog.NewMemoryStore()
	ledgerStore := ledger.NewMemoryStore()
	outreachStore := outreach.NewMemoryStore()
	playbookStore := playbook.NewMemoryStore()
	incidentStore := incident.NewMemoryStore()

	// Outbound channels
	emailService := email.NewService(cfg.Email.SMTPAddr, cfg.Email.From)
	slackClient := slack.NewClient(cfg.Slack.Token, cfg.Slack.Channel)
	dispatcher := invite.NewAsyncDispatcher(emailService, slackClient, cfg.Slack.Channel, cfg.Invite.QueueSize)
	defer dispatcher.Close()

	// Core services
	trustEngine := trust.NewEngine(directoryStore, publisher, clk, trust.Config{
		Min:          cfg.Trust.Min,
		Max:          cfg.Trust.Max,
		RatingWeight: cfg.Trust.RatingWeight,
	})
	catalogService := catalog.NewService(sessionStore, directoryStore, dispatcher, policy.DefaultInvitePolicy(), publisher, clk)
	ledgerService := ledger.NewService(ledgerStore, sessionStore, directoryStore, trustEngine, publisher, clk)
	outreachService := outreach.NewService(outreachStore, directoryStore, trustEngine, publisher, clk)
	playbookService := playbook.NewService(playbookStore, directoryStore, publisher, clk)
	incidentManager := incident.NewManager(incidentStore, directoryStore, trustEngine, catalogService, playbookService, publisher, clk)

	var contracts billing.ContractSource
	if cfg.Stripe.APIKey != "" {
		contracts = billing.NewStripeContracts(cfg.Stripe.APIKey)
	}
	onboardingService := onboarding.NewService(directoryStore, contracts, emailService, clk)

	var narrator reporting.NarrativeGenerator
	if cfg.OpenAI.APIKey != "" {
		narrator = reporting.NewOpenAINarrator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}
	reportingService := reporting.NewService(sessionStore, ledgerStore, outreachStore, directoryStore, reportCache, narrator, clk)

	gateway := api.NewGateway(api.GatewayConfig{
		Host:           cfg.API.Host,
		Port:           cfg.API.Port,
		ReadTimeout:    cfg.API.ReadTimeout,
		WriteTimeout:   cfg.API.WriteTimeout,
		IdleTimeout:    cfg.API.IdleTimeout,
		EnableCORS:     cfg.API.EnableCORS,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}, api.Services{
		Catalog:    catalogService,
		Ledger:     ledgerService,
		Outreach:   outreachService,
		Reporting:  reportingService,
		Onboarding: onboardingService,
		Incidents:  incidentManager,
		Playbooks:  playbookService,
		Health:     checker,
		Clock:      clk,
	})

	go func() {
		if err := gateway.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Gateway stopped: %v", err)
			cancel()
		}
	}()

	waitForShutdown(ctx, cancel, gateway)
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, gateway *api.Gateway) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %s, shutting down", sig)
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := gateway.Stop(shutdownCtx); err != nil {
		log.Printf("Failed to stop gateway cleanly: %v", err)
	}
}

func printHelp() {
	fmt.Printf(`EngageHub - Engagement Scheduler & Trust-Tracking Service

Usage:
  engagehub [flags]

Flags:
  -config string
        Configuration file path (default "config/config.yaml")
  -version
        Show version information
  -help
        Show this help message

Examples:
  engagehub                                  # Start with default config
  engagehub -config config/production.yaml   # Start with production config
`)
}
