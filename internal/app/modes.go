package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sidkap/optadvisor/internal/analytics"
	"github.com/sidkap/optadvisor/internal/assemble"
	"github.com/sidkap/optadvisor/internal/domain"
	"github.com/sidkap/optadvisor/internal/eventlog"
	"github.com/sidkap/optadvisor/internal/recommend"
	"github.com/sidkap/optadvisor/internal/server"
	"github.com/sidkap/optadvisor/internal/server/handler"
	"github.com/sidkap/optadvisor/internal/server/ws"
)

// maxPortfolioRisk is the fraction of portfolio value allowed at risk before
// the risk report flags over-exposure.
const maxPortfolioRisk = 0.10

// archiveInterval is how often serve mode sweeps old events to cold storage.
const archiveInterval = 24 * time.Hour

// fullResult is what a complete analysis run produces: the staged engine's
// run state, the language-model narrative, and the assembled context.
type fullResult struct {
	Run      *recommend.RunState     `json:"run"`
	Analysis recommend.DecodedOutput `json:"analysis"`
	Context  domain.ContextBundle    `json:"context"`
}

// FullMode runs one complete analysis: context assembly, the staged
// recommendation engine, and the language-model narrative, then logs the
// run's events and notifies configured channels.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full analysis")

	result, err := a.runFullAnalysis(ctx, deps)
	if err != nil {
		return err
	}
	return a.writeResult(result)
}

func (a *App) runFullAnalysis(ctx context.Context, deps *Dependencies) (*fullResult, error) {
	asm := assemble.New(deps.Provider, deps.News, deps.NewsAnalyst, deps.Miner, deps.EventStore, a.logger)

	bundle, err := asm.Assemble(ctx, a.cfg.Scanner.StockList, a.cfg.NewsAPI.UserLinks)
	if err != nil {
		return nil, fmt.Errorf("app: assemble context: %w", err)
	}
	if len(bundle.Errors) > 0 {
		a.logger.WarnContext(ctx, "context assembled with partial data",
			slog.Int("errors", len(bundle.Errors)),
		)
	}

	state, err := deps.Engine.FindOpportunities(ctx, bundle.Portfolio, a.cfg.Filters, a.cfg.Scanner.StockList)
	if err != nil {
		return nil, fmt.Errorf("app: recommendation run: %w", err)
	}

	// The model narrative is best-effort: a provider failure degrades to the
	// engine's structured output alone.
	var analysis recommend.DecodedOutput
	output, err := deps.Completer.GenerateResponse(ctx, recommend.BuildPrompt(bundle), recommend.SystemMessage)
	if err != nil {
		a.logger.WarnContext(ctx, "model narrative unavailable",
			slog.String("error", err.Error()),
		)
	} else {
		analysis = recommend.DecodeModelOutput(output)
	}

	// Event-log writes are the one failure class that aborts the run. Losing
	// feedback data silently would corrupt later pattern mining.
	if err := eventlog.LogPortfolioSummary(ctx, deps.EventStore, bundle.Portfolio); err != nil {
		return nil, fmt.Errorf("app: log portfolio summary: %w", err)
	}
	for _, rec := range state.FinalRecommendations {
		if err := eventlog.LogRecommendation(ctx, deps.EventStore, rec); err != nil {
			return nil, fmt.Errorf("app: log recommendation %s: %w", rec.Symbol, err)
		}
	}

	if err := deps.Notifier.NotifyRunCompleted(ctx, state.FinalRecommendations); err != nil {
		a.logger.WarnContext(ctx, "run notification failed",
			slog.String("error", err.Error()),
		)
	}

	a.logger.InfoContext(ctx, "full analysis complete",
		slog.String("run_id", state.RunID),
		slog.Int("recommendations", len(state.FinalRecommendations)),
		slog.Bool("structured_narrative", analysis.Structured),
	)

	return &fullResult{Run: state, Analysis: analysis, Context: bundle}, nil
}

// quickResult is the abbreviated portfolio-plus-market snapshot.
type quickResult struct {
	Portfolio  domain.Portfolio                   `json:"portfolio"`
	Quotes     map[string]domain.Quote            `json:"quotes"`
	Indicators map[string]domain.MarketIndicators `json:"indicators"`
}

// QuickMode fetches the portfolio plus quotes and technical indicators for
// the scan list, with no sentiment or model calls. Per-symbol fetch failures
// are logged and skipped.
func (a *App) QuickMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting quick analysis")

	portfolio, err := deps.Provider.Portfolio(ctx)
	if err != nil {
		return fmt.Errorf("app: fetch portfolio: %w", err)
	}

	result := quickResult{
		Portfolio:  portfolio,
		Quotes:     map[string]domain.Quote{},
		Indicators: map[string]domain.MarketIndicators{},
	}
	for _, symbol := range a.cfg.Scanner.StockList {
		quote, err := deps.Provider.Quote(ctx, symbol)
		if err != nil {
			a.logger.WarnContext(ctx, "quote fetch failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		} else {
			result.Quotes[symbol] = quote
		}

		indicators, err := deps.Provider.MarketIndicators(ctx, symbol)
		if err != nil {
			a.logger.WarnContext(ctx, "indicator fetch failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		} else {
			result.Indicators[symbol] = indicators
		}
	}

	a.logger.InfoContext(ctx, "quick analysis complete",
		slog.Int("positions", len(portfolio.Positions)),
		slog.Int("quotes", len(result.Quotes)),
	)
	return a.writeResult(result)
}

// riskResult is the risk-only view of the portfolio. Exposure weights short
// positions double.
type riskResult struct {
	Analysis       analytics.PortfolioAnalysis `json:"analysis"`
	MarginAlert    analytics.MarginAlert       `json:"margin_alert"`
	StressTest     analytics.StressResult      `json:"stress_test"`
	ValueAtRisk    analytics.VaRResult         `json:"value_at_risk"`
	TotalValue     float64                     `json:"total_value"`
	RiskExposure   float64                     `json:"risk_exposure"`
	RiskPercentage float64                     `json:"risk_percentage"`
	MaxAllowedRisk float64                     `json:"max_allowed_risk"`
}

// RiskMode runs the risk toolkit over the current portfolio: margin
// utilization, a uniform-drop stress test, VaR, and the exposure check.
func (a *App) RiskMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting risk analysis")

	portfolio, err := deps.Provider.Portfolio(ctx)
	if err != nil {
		return fmt.Errorf("app: fetch portfolio: %w", err)
	}

	result := riskResult{
		Analysis:       analytics.AnalyzePortfolio(portfolio),
		StressTest:     analytics.StressTest(portfolio.Positions, 0.05),
		ValueAtRisk:    analytics.ValueAtRisk(portfolio.Positions, 0.95),
		MaxAllowedRisk: maxPortfolioRisk * 100,
	}

	for _, pos := range portfolio.Positions {
		result.TotalValue += pos.MarketValue
		if pos.PositionType == domain.PositionShort {
			result.RiskExposure += pos.MarketValue * 2
		} else {
			result.RiskExposure += pos.MarketValue
		}
	}
	if result.TotalValue > 0 {
		result.RiskPercentage = result.RiskExposure / result.TotalValue * 100
	}

	margins, err := deps.Provider.Margins(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "margin fetch failed",
			slog.String("error", err.Error()),
		)
	} else {
		result.MarginAlert = analytics.MarginUtilizationAlert(margins, 0.7)
		if result.MarginAlert.Alert {
			if err := deps.Notifier.NotifyMarginAlert(ctx, result.MarginAlert.Message); err != nil {
				a.logger.WarnContext(ctx, "margin alert notification failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}

	a.logger.InfoContext(ctx, "risk analysis complete",
		slog.Float64("risk_percentage", result.RiskPercentage),
		slog.Float64("max_allowed_risk", result.MaxAllowedRisk),
	)
	return a.writeResult(result)
}

// positionsResult is the per-position analytics view.
type positionsResult struct {
	Positions []analytics.PositionAnalysis `json:"positions"`
	Greeks    []domain.PositionGreeks      `json:"greeks"`
	Summary   domain.Greeks                `json:"portfolio_greeks"`
}

// PositionsMode analyzes each open position individually: metrics, risk
// group, and greeks.
func (a *App) PositionsMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting position analysis")

	portfolio, err := deps.Provider.Portfolio(ctx)
	if err != nil {
		return fmt.Errorf("app: fetch portfolio: %w", err)
	}

	result := positionsResult{
		Positions: make([]analytics.PositionAnalysis, 0, len(portfolio.Positions)),
		Greeks:    analytics.PerPositionGreeks(portfolio.Positions),
		Summary:   analytics.PortfolioGreeks(portfolio.Positions),
	}
	for _, pos := range portfolio.Positions {
		result.Positions = append(result.Positions, analytics.AnalyzePosition(pos))
	}

	a.logger.InfoContext(ctx, "position analysis complete",
		slog.Int("positions", len(result.Positions)),
	)
	return a.writeResult(result)
}

// sentimentResult holds the per-symbol and per-sector news verdicts.
type sentimentResult struct {
	Symbols map[string]string `json:"symbols"`
	Sectors map[string]string `json:"sectors"`
}

// SentimentMode runs news sentiment analysis over the scan list without
// touching the portfolio or generating recommendations.
func (a *App) SentimentMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting sentiment analysis")

	result := sentimentResult{
		Symbols: deps.NewsAnalyst.ForSymbols(ctx, a.cfg.Scanner.StockList, a.cfg.NewsAPI.UserLinks),
		Sectors: deps.NewsAnalyst.ForSectors(ctx, a.cfg.Scanner.StockList, a.cfg.NewsAPI.UserLinks),
	}

	a.logger.InfoContext(ctx, "sentiment analysis complete",
		slog.Int("symbols", len(result.Symbols)),
		slog.Int("sectors", len(result.Sectors)),
	)
	return a.writeResult(result)
}

// ServeMode starts the dashboard API server and WebSocket hub, runs analyses
// on demand via POST /api/analyze, and periodically archives old events when
// cold storage is configured.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode",
		slog.Int("port", a.cfg.Server.Port),
	)

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	// Stream stage transitions to connected dashboards.
	deps.Engine.OnStage = func(state *recommend.RunState) {
		hub.Broadcast("run_update", state)
	}

	triggerCh := make(chan struct{}, 1)
	handlers := server.Handlers{
		Health:          handler.NewHealthHandler(a.logger),
		Events:          handler.NewEventsHandler(deps.EventStore, a.logger),
		Feedback:        handler.NewFeedbackHandler(deps.EventStore, a.logger),
		Recommendations: handler.NewRecommendationHandler(deps.EventStore, a.logger),
		Portfolio:       handler.NewPortfolioHandler(deps.Provider, a.logger),
		Analyze:         handler.NewAnalyzeHandler(a.logger).WithTriggerChannel(triggerCh),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Triggered analysis runs, one at a time.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-triggerCh:
				result, err := a.runFullAnalysis(ctx, deps)
				if err != nil {
					a.logger.ErrorContext(ctx, "triggered analysis failed",
						slog.String("error", err.Error()),
					)
					hub.Broadcast("run_failed", map[string]string{"error": err.Error()})
					continue
				}
				hub.Broadcast("run_completed", result.Run)
			}
		}
	})

	if deps.Archiver != nil {
		g.Go(func() error {
			return a.runArchiveLoop(ctx, deps)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("app: serve: %w", err)
	}
	return nil
}

// runArchiveLoop sweeps events older than the retention window to cold
// storage once per interval. A sweep failure is logged and retried on the
// next tick rather than taking the server down.
func (a *App) runArchiveLoop(ctx context.Context, deps *Dependencies) error {
	ticker := time.NewTicker(archiveInterval)
	defer ticker.Stop()

	retention := time.Duration(a.cfg.S3.ArchiveRetentionDays) * 24 * time.Hour
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-retention)
			count, err := deps.Archiver.ArchiveEvents(ctx, cutoff)
			if err != nil {
				a.logger.ErrorContext(ctx, "event archival failed",
					slog.String("error", err.Error()),
				)
				continue
			}
			a.logger.InfoContext(ctx, "event archival complete",
				slog.Int64("archived", count),
				slog.Time("cutoff", cutoff),
			)
		}
	}
}
