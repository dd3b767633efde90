package app

import (
	"log/slog"

	"github.com/Anurag2509-fledor/trade-simulator/internal/config"
	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
	"github.com/Anurag2509-fledor/trade-simulator/internal/feed"
	"github.com/Anurag2509-fledor/trade-simulator/internal/metrics"
	"github.com/Anurag2509-fledor/trade-simulator/internal/models"
	"github.com/Anurag2509-fledor/trade-simulator/internal/pipeline"
	"github.com/Anurag2509-fledor/trade-simulator/internal/query"
	"github.com/Anurag2509-fledor/trade-simulator/internal/scheduler"
	"github.com/Anurag2509-fledor/trade-simulator/internal/server"
	"github.com/Anurag2509-fledor/trade-simulator/internal/server/handler"
	"github.com/Anurag2509-fledor/trade-simulator/internal/window"
)

// Dependencies bundles every runtime component the application drives. It is
// constructed by Wire; everything lives in process memory, so there is no
// cleanup function to return.
type Dependencies struct {
	Metrics  *metrics.Registry
	Store    *window.Store
	Feed     *feed.Client
	Pipeline *pipeline.Pipeline
	Facade   *query.Facade
	Server   *server.Server // nil when the HTTP API is disabled
}

// feeSchedule converts the configured fee tiers into a domain schedule,
// falling back to the exchange defaults when none are configured.
func feeSchedule(tiers map[string]config.FeeTierConfig) domain.FeeSchedule {
	if len(tiers) == 0 {
		return domain.DefaultFeeSchedule()
	}
	sched := make(domain.FeeSchedule, len(tiers))
	for name, t := range tiers {
		sched[name] = domain.FeeTier{Maker: t.Maker, Taker: t.Taker}
	}
	return sched
}

// Wire constructs the full component graph from the given configuration:
// transport, rolling window, cost models, refit scheduler, ingestion
// pipeline, query facade, and (optionally) the HTTP server.
func Wire(cfg *config.Config, logger *slog.Logger) *Dependencies {
	reg := metrics.NewRegistry()

	store := window.New(cfg.Window.Capacity, cfg.Window.Annualization)

	impact := models.NewImpactModel(models.ImpactConfig{
		Eta:          cfg.Impact.Eta,
		Gamma:        cfg.Impact.Gamma,
		RiskAversion: cfg.Impact.RiskAversion,
	}, store)
	slippage := models.NewSlippageModel(models.SlippageConfig{
		Quantile:      cfg.Slippage.Quantile,
		Alpha:         cfg.Slippage.Alpha,
		RefitInterval: cfg.Slippage.RefitInterval.Duration,
	}, store, logger)
	makerTaker := models.NewMakerTakerModel(models.MakerTakerConfig{
		MaxIterations: cfg.MakerTaker.MaxIterations,
		RefitInterval: cfg.MakerTaker.RefitInterval.Duration,
	}, store, logger)

	sched := scheduler.New([]scheduler.Refittable{slippage, makerTaker}, nil, logger)
	sched.OnFit(reg.RefitResult)

	feedClient := feed.NewClient(feed.Config{
		URL:                  cfg.Stream.URL,
		ReconnectDelay:       cfg.Stream.ReconnectDelay.Duration,
		MaxReconnectAttempts: cfg.Stream.MaxReconnectAttempts,
		Buffer:               cfg.Stream.Buffer,
	}, logger, feed.WithMetrics(reg))

	pipe := pipeline.New(store, sched, feedClient.Frames(), reg, logger)

	facade := query.New(store, impact, slippage, makerTaker, feeSchedule(cfg.Fees))

	deps := &Dependencies{
		Metrics:  reg,
		Store:    store,
		Feed:     feedClient,
		Pipeline: pipe,
		Facade:   facade,
	}

	if cfg.Server.Enabled {
		deps.Server = server.NewServer(
			server.Config{
				Port:        cfg.Server.Port,
				CORSOrigins: cfg.Server.CORSOrigins,
			},
			server.Handlers{
				Health:    handler.NewHealthHandler(logger),
				Status:    handler.NewStatusHandler(feedClient, pipe, store, logger),
				Estimates: handler.NewEstimateHandler(facade, logger),
			},
			reg.Handler(),
			logger,
		)
	}

	return deps
}
