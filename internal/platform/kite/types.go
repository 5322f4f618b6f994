package kite

import (
	"time"

	"github.com/sidkap/optadvisor/internal/domain"
)

// apiPortfolio mirrors the gateway's portfolio payload.
type apiPortfolio struct {
	TotalMargin    float64            `json:"total_margin"`
	AvailableCash  float64            `json:"available_cash"`
	TotalExposure  float64            `json:"total_exposure"`
	MarginUsed     float64            `json:"margin_used"`
	MarginTotal    float64            `json:"margin_total"`
	RiskScore      float64            `json:"risk_score"`
	SectorExposure map[string]float64 `json:"sector_exposure"`
	Net            []apiPosition      `json:"net"`
}

// apiPosition mirrors one broker position.
type apiPosition struct {
	TradingSymbol    string  `json:"tradingsymbol"`
	Quantity         int     `json:"quantity"`
	AveragePrice     float64 `json:"average_price"`
	LastPrice        float64 `json:"last_price"`
	MarketValue      float64 `json:"market_value"`
	PnL              float64 `json:"pnl"`
	MarginUsed       float64 `json:"margin_used"`
	PremiumCollected float64 `json:"premium_collected"`
	ROM              float64 `json:"rom"`
	SSR              float64 `json:"ssr"`
	RiskIndicator    int     `json:"risk_indicator"`
	RewardRiskRatio  float64 `json:"reward_risk_ratio"`
	Expiry           string  `json:"expiry"`
	StrikePrice      float64 `json:"strike_price"`
	OptionType       string  `json:"option_type"`
	Sector           string  `json:"sector"`
}

type apiOptionChain struct {
	Data []domain.OptionQuote `json:"data"`
}

func (p apiPortfolio) toDomain() domain.Portfolio {
	positions := make([]domain.Position, 0, len(p.Net))
	for _, pos := range p.Net {
		positions = append(positions, pos.toDomain())
	}
	return domain.Portfolio{
		TotalMargin:    p.TotalMargin,
		AvailableCash:  p.AvailableCash,
		TotalExposure:  p.TotalExposure,
		RiskScore:      p.RiskScore,
		MarginUsed:     p.MarginUsed,
		MarginTotal:    p.MarginTotal,
		SectorExposure: p.SectorExposure,
		Positions:      positions,
	}
}

func (p apiPosition) toDomain() domain.Position {
	positionType := domain.PositionLong
	if p.Quantity < 0 {
		positionType = domain.PositionShort
	}
	expiry, _ := time.Parse("2006-01-02", p.Expiry)
	return domain.Position{
		Symbol:           p.TradingSymbol,
		Quantity:         p.Quantity,
		AveragePrice:     p.AveragePrice,
		CurrentPrice:     p.LastPrice,
		MarketValue:      p.MarketValue,
		PnL:              p.PnL,
		MarginUsed:       p.MarginUsed,
		PremiumCollected: p.PremiumCollected,
		ROM:              p.ROM,
		SSR:              p.SSR,
		RiskIndicator:    p.RiskIndicator,
		RewardRiskRatio:  p.RewardRiskRatio,
		PositionType:     positionType,
		Expiry:           expiry,
		StrikePrice:      p.StrikePrice,
		OptionType:       p.OptionType,
		Sector:           p.Sector,
	}
}
