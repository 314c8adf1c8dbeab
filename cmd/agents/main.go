package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-agents/internal/agent"
	"github.com/rxtech-lab/argo-agents/internal/logger"
	"github.com/rxtech-lab/argo-agents/internal/store"
	"github.com/rxtech-lab/argo-agents/pkg/classify"
	"github.com/rxtech-lab/argo-agents/pkg/newsfeed"
	"github.com/rxtech-lab/argo-agents/pkg/pricefeed"
)

// runAction wires the providers, builds the orchestrator and runs it until
// SIGINT/SIGTERM.
func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := agent.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()

	providerType := pricefeed.ProviderType(cmd.String("provider"))

	var providerConfig any
	if providerType == pricefeed.ProviderPolygon {
		providerConfig = os.Getenv("POLYGON_API_KEY")
	}

	provider, err := pricefeed.NewProvider(providerType, providerConfig)
	if err != nil {
		return err
	}

	classifier, err := classify.NewOpenAIClassifier(os.Getenv("OPENAI_API_KEY"), cmd.String("model"))
	if err != nil {
		return err
	}

	fetcher := newsfeed.NewClient(cmd.String("news-url"), os.Getenv("NEWS_API_KEY"))

	orchestrator := agent.NewOrchestrator(cfg, provider, classifier, fetcher, appLogger)
	orchestrator.SetStore(store.NewFileStore(cmd.String("state")))

	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := orchestrator.Start(runCtx); err != nil {
		return err
	}

	events := orchestrator.Events().Subscribe()

	for {
		select {
		case <-runCtx.Done():
			appLogger.Info("shutdown requested")

			return orchestrator.Stop(context.Background())
		case event, ok := <-events:
			if !ok {
				return orchestrator.Stop(context.Background())
			}

			appLogger.Info("event",
				zap.String("id", event.ID),
				zap.String("type", string(event.Type)),
				zap.String("source", event.Source),
				zap.Any("payload", event.Payload),
			)
		}
	}
}

func main() {
	// Environment overrides from .env are optional.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "agents",
		Usage: "Run the market monitoring and decision engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the YAML engine config",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Price provider (%s, %s)", pricefeed.ProviderBinance, pricefeed.ProviderPolygon),
				Value:   string(pricefeed.ProviderBinance),
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "OpenAI model used for signal classification",
			},
			&cli.StringFlag{
				Name:  "news-url",
				Usage: "Base URL of the news API",
				Value: "https://api.example.com",
			},
			&cli.StringFlag{
				Name:  "state",
				Usage: "Path to the persisted run-state file",
				Value: "agents_state.json",
			},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
