package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tf2tools/tf2arb/internal/backpacktf"
	"github.com/tf2tools/tf2arb/internal/config"
	"github.com/tf2tools/tf2arb/internal/evaluate"
	"github.com/tf2tools/tf2arb/internal/logger"
	"github.com/tf2tools/tf2arb/internal/models"
	"github.com/tf2tools/tf2arb/internal/orchestrator"
	"github.com/tf2tools/tf2arb/internal/pricing"
	"github.com/tf2tools/tf2arb/internal/session"
	"github.com/tf2tools/tf2arb/internal/storage"
	"github.com/tf2tools/tf2arb/internal/telegram"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging with level support
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	// Initialize report storage
	store := storage.New(cfg.Storage.MaxReports, cfg.Storage.FilePath)
	if err := store.Load(); err != nil {
		logger.Warn("Failed to load previous reports: %v", err)
	}

	// Initialize Telegram client
	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	// Launch the scraping browser
	client, err := backpacktf.NewClient(cfg.Backpack)
	if err != nil {
		logger.Fatal("Failed to launch browser: %v", err)
	}
	defer client.Close()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	// Session state for this run
	sess := session.New()
	if cfg.Pricing.KeyRateOverride > 0 {
		sess.SetKeyRate(cfg.Pricing.KeyRateOverride)
	}

	// Warm up the browser session before the timed scraping starts
	warmupQuery := models.ItemAttributes{BaseName: cfg.Pricing.ReferenceItem, Quality: models.QualityUnique}
	if err := client.Warmup(ctx, warmupQuery); err != nil {
		logger.Warn("Warmup navigation failed: %v", err)
	}

	orch := orchestrator.New(client, sess, cfg)

	logger.Info("Starting arbitrage run (items: %d, kits: %v, concurrency: %d)",
		len(cfg.Arbitrage.Items), cfg.Arbitrage.Kits, cfg.Arbitrage.Concurrency)

	report, err := orch.Run(ctx)
	if err != nil {
		logger.Fatal("Arbitrage run failed: %v", err)
	}

	printReport(report, cfg)

	// Persist the report
	if err := store.AddReport(report); err != nil {
		logger.Error("Failed to store report: %v", err)
	}
	if err := store.RotateReports(); err != nil {
		logger.Warn("Failed to rotate reports: %v", err)
	}
	if err := store.Save(); err != nil {
		logger.Error("Failed to persist reports: %v", err)
	}

	// Notify on profitable deals
	deals := evaluate.Profitable(report.Evaluations, cfg.Arbitrage.MinProfit, cfg.Arbitrage.MinROI)
	if len(deals) > 0 && cfg.Telegram.Enabled && telegramClient != nil {
		var rate *float64
		if report.KeyRateRefined > 0 {
			rate = &report.KeyRateRefined
		}
		if err := telegramClient.Send(deals, rate, cfg.Pricing.MinDisplayKeys); err != nil {
			logger.Error("Failed to send Telegram notification: %v", err)
		} else {
			logger.Info("Sent Telegram notification with %d deals", len(deals))
		}
	}

	logger.Info("Run %s completed in %v", report.ID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
}

// printReport writes the ranked evaluations to stdout, re-expressing large
// refined amounts in keys for readability.
func printReport(report *models.Report, cfg *config.Config) {
	var rate *float64
	if report.KeyRateRefined > 0 {
		rate = &report.KeyRateRefined
	}

	fmt.Printf("\nArbitrage report %s\n", report.ID)
	if report.KeyRateRefined > 0 {
		fmt.Printf("Key rate: %.2f ref/key\n", report.KeyRateRefined)
	} else {
		fmt.Println("Key rate: unknown (key-denominated listings were skipped)")
	}
	fmt.Println()

	for i, eval := range report.Evaluations {
		if eval.FailureReason != "" {
			fmt.Printf("%2d. %s + %s kit: skipped (%s)\n",
				i+1, eval.BaseItem, eval.Kit.Phrase(), eval.FailureReason)
			continue
		}
		marker := " "
		if eval.Profitable {
			marker = "*"
		}
		fmt.Printf("%2d.%s %s\n", i+1, marker, eval.UpgradedItem)
		fmt.Printf("      cost %s (base %s + kit %s), resale %s, profit %s (ROI %.1f%%)\n",
			displayAmount(eval.TotalCostRefined, rate, cfg.Pricing.MinDisplayKeys),
			displayAmount(eval.BaseSellRefined, rate, cfg.Pricing.MinDisplayKeys),
			displayAmount(eval.KitCostRefined, rate, cfg.Pricing.MinDisplayKeys),
			displayAmount(eval.UpgradedBuyRefined, rate, cfg.Pricing.MinDisplayKeys),
			displayAmount(eval.ProfitRefined, rate, cfg.Pricing.MinDisplayKeys),
			eval.ROIPercent)
	}
	fmt.Println()
}

func displayAmount(refined float64, rate *float64, minDisplayKeys float64) string {
	price := pricing.ToKeysIfWorthIt(refined, rate, minDisplayKeys)
	if price.Currency == models.CurrencyKeys {
		return fmt.Sprintf("%.2f keys", price.Amount)
	}
	return fmt.Sprintf("%.2f ref", price.Amount)
}
