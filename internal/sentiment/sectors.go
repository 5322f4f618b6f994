// Package sentiment classifies news sentiment per symbol and per sector by
// matching headlines to stocks and asking a language model for a verdict.
package sentiment

import "log/slog"

// sectorEntry pins a symbol to a sector. The table is ordered: when a symbol
// appears twice the first entry wins and the conflict is logged once at
// construction.
type sectorEntry struct {
	Symbol string
	Sector string
}

var sectorTable = []sectorEntry{
	// Banking
	{"HDFCBANK", "Banking"}, {"ICICIBANK", "Banking"}, {"KOTAKBANK", "Banking"},
	{"SBIN", "Banking"}, {"AXISBANK", "Banking"}, {"INDUSINDBK", "Banking"},
	{"BANKBARODA", "Banking"}, {"PNB", "Banking"},
	// PSU
	{"SBIN", "PSU"}, {"ONGC", "PSU"}, {"COALINDIA", "PSU"}, {"NTPC", "PSU"},
	{"BPCL", "PSU"}, {"POWERGRID", "PSU"}, {"GAIL", "PSU"},
	// Auto
	{"MARUTI", "Auto"}, {"TATAMOTORS", "Auto"}, {"EICHERMOT", "Auto"},
	{"HEROMOTOCO", "Auto"}, {"M&M", "Auto"}, {"BAJAJ-AUTO", "Auto"},
	// NBFC
	{"BAJFINANCE", "NBFC"}, {"BAJAJFINSV", "NBFC"}, {"HDFCLIFE", "NBFC"}, {"SBILIFE", "NBFC"},
	// IT
	{"TCS", "IT"}, {"INFY", "IT"}, {"HCLTECH", "IT"}, {"WIPRO", "IT"}, {"TECHM", "IT"},
}

// SectorOther is assigned to symbols absent from the table.
const SectorOther = "Other"

// buildSectorMap folds the ordered table into a lookup, keeping the first
// sector for duplicated symbols.
func buildSectorMap(logger *slog.Logger) map[string]string {
	m := make(map[string]string, len(sectorTable))
	for _, e := range sectorTable {
		if existing, ok := m[e.Symbol]; ok {
			logger.Warn("duplicate sector mapping, keeping first",
				slog.String("symbol", e.Symbol),
				slog.String("kept", existing),
				slog.String("ignored", e.Sector),
			)
			continue
		}
		m[e.Symbol] = e.Sector
	}
	return m
}

// SectorOf returns the sector for a symbol per the package table.
func (a *Analyst) SectorOf(symbol string) string {
	if sector, ok := a.sectors[symbol]; ok {
		return sector
	}
	return SectorOther
}
