package analytics

import (
	"sort"

	"github.com/sidkap/optadvisor/internal/domain"
)

// PositionAnalysis is one position with its derived metrics.
type PositionAnalysis struct {
	Position         domain.Position `json:"position"`
	ROIPercentage    float64         `json:"roi_percentage"`
	RewardRiskRatio  float64         `json:"reward_risk_ratio"`
	RiskGroup        string          `json:"risk_group"`
	MarginEfficiency float64         `json:"margin_efficiency"`
}

// SectorAnalysis aggregates positions that share a sector.
type SectorAnalysis struct {
	Sector                string  `json:"sector"`
	TotalMargin           float64 `json:"total_margin"`
	PositionCount         int     `json:"position_count"`
	ExposurePercentage    float64 `json:"exposure_percentage"`
	TotalPremiumCollected float64 `json:"total_premium_collected"`
	AverageROM            float64 `json:"average_rom"`
	AverageSSR            float64 `json:"average_ssr"`
	AverageRiskIndicator  float64 `json:"average_risk_indicator"`
	RiskGroup             string  `json:"risk_group"`
}

// PortfolioAnalysis is the complete derived view of a portfolio.
type PortfolioAnalysis struct {
	TotalMargin           float64            `json:"total_margin"`
	AvailableCash         float64            `json:"available_cash"`
	TotalExposure         float64            `json:"total_exposure"`
	TotalPremiumCollected float64            `json:"total_premium_collected"`
	OverallROI            float64            `json:"overall_roi"`
	OverallRiskScore      float64            `json:"overall_risk_score"`
	SectorAnalyses        []SectorAnalysis   `json:"sector_analyses"`
	PositionAnalyses      []PositionAnalysis `json:"position_analyses"`
	RiskDistribution      map[string]int     `json:"risk_distribution"`
	MarginUtilization     float64            `json:"margin_utilization"`
}

// AnalyzePosition derives the per-position metrics.
func AnalyzePosition(pos domain.Position) PositionAnalysis {
	return PositionAnalysis{
		Position:         pos,
		ROIPercentage:    ROI(pos.PremiumCollected, pos.MarginUsed),
		RewardRiskRatio:  RewardRiskRatio(pos.PremiumCollected, pos.RiskIndicator),
		RiskGroup:        RiskGroup(pos.RiskIndicator),
		MarginEfficiency: MarginEfficiency(pos.PremiumCollected, pos.MarginUsed),
	}
}

// AnalyzePortfolio derives the full portfolio view. An empty portfolio gets
// a neutral risk score of 5.0 rather than zero.
func AnalyzePortfolio(p domain.Portfolio) PortfolioAnalysis {
	var totalPremium float64
	for _, pos := range p.Positions {
		totalPremium += pos.PremiumCollected
	}

	riskScore := 5.0
	if len(p.Positions) > 0 {
		var sum float64
		for _, pos := range p.Positions {
			sum += float64(pos.RiskIndicator)
		}
		riskScore = sum / float64(len(p.Positions))
	}

	utilization := 0.0
	if denom := p.TotalMargin + p.AvailableCash; denom > 0 {
		utilization = (p.TotalMargin / denom) * 100
	}

	analyses := make([]PositionAnalysis, 0, len(p.Positions))
	for _, pos := range p.Positions {
		analyses = append(analyses, AnalyzePosition(pos))
	}

	return PortfolioAnalysis{
		TotalMargin:           p.TotalMargin,
		AvailableCash:         p.AvailableCash,
		TotalExposure:         p.TotalExposure,
		TotalPremiumCollected: totalPremium,
		OverallROI:            ROI(totalPremium, p.TotalMargin),
		OverallRiskScore:      riskScore,
		SectorAnalyses:        AnalyzeSectors(p),
		PositionAnalyses:      analyses,
		RiskDistribution:      RiskDistribution(analyses),
		MarginUtilization:     utilization,
	}
}

// AnalyzeSectors groups positions by sector. A position's sector is the
// first three characters of its symbol; shorter symbols fall under "Other".
// The sector risk group classifies the truncated average risk indicator.
func AnalyzeSectors(p domain.Portfolio) []SectorAnalysis {
	type bucket struct {
		margin   float64
		count    int
		premium  float64
		romSum   float64
		ssrSum   float64
		riskSum  int
		riskVals int
	}
	buckets := map[string]*bucket{}

	for _, pos := range p.Positions {
		sector := "Other"
		if len(pos.Symbol) >= 3 {
			sector = pos.Symbol[:3]
		}
		b, ok := buckets[sector]
		if !ok {
			b = &bucket{}
			buckets[sector] = b
		}
		b.margin += pos.MarginUsed
		b.count++
		b.premium += pos.PremiumCollected
		b.romSum += pos.ROM
		b.ssrSum += pos.SSR
		b.riskSum += pos.RiskIndicator
		b.riskVals++
	}

	sectors := make([]string, 0, len(buckets))
	for s := range buckets {
		sectors = append(sectors, s)
	}
	sort.Strings(sectors)

	analyses := make([]SectorAnalysis, 0, len(sectors))
	for _, sector := range sectors {
		b := buckets[sector]
		exposure := 0.0
		if p.TotalMargin > 0 {
			exposure = (b.margin / p.TotalMargin) * 100
		}
		avgRisk := 5.0
		if b.riskVals > 0 {
			avgRisk = float64(b.riskSum) / float64(b.riskVals)
		}
		n := float64(b.count)
		analyses = append(analyses, SectorAnalysis{
			Sector:                sector,
			TotalMargin:           b.margin,
			PositionCount:         b.count,
			ExposurePercentage:    exposure,
			TotalPremiumCollected: b.premium,
			AverageROM:            b.romSum / n,
			AverageSSR:            b.ssrSum / n,
			AverageRiskIndicator:  avgRisk,
			RiskGroup:             RiskGroup(int(avgRisk)),
		})
	}
	return analyses
}

// RiskDistribution counts positions per risk group. All three labels are
// always present.
func RiskDistribution(analyses []PositionAnalysis) map[string]int {
	dist := map[string]int{
		RiskGroupLow:    0,
		RiskGroupMedium: 0,
		RiskGroupHigh:   0,
	}
	for _, a := range analyses {
		dist[a.RiskGroup]++
	}
	return dist
}

// PositionDetails returns the analysis for the named symbol, or false when
// the portfolio holds no such position.
func PositionDetails(p domain.Portfolio, symbol string) (PositionAnalysis, bool) {
	for _, pos := range p.Positions {
		if pos.Symbol == symbol {
			return AnalyzePosition(pos), true
		}
	}
	return PositionAnalysis{}, false
}
