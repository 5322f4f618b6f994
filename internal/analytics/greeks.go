package analytics

import (
	"hash/fnv"
	"math/rand"

	"github.com/sidkap/optadvisor/internal/domain"
)

// PositionGreeksFor returns placeholder Greeks for one position. Values are
// drawn from a generator seeded by the symbol, so the same symbol always
// yields the same Greeks: delta in [-1,1), gamma in [0,0.2), theta in
// (-0.1,0], vega in [0,1). A real pricing model should replace this once a
// volatility feed is wired in.
func PositionGreeksFor(pos domain.Position) domain.Greeks {
	h := fnv.New32a()
	h.Write([]byte(pos.Symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum32())))
	return domain.Greeks{
		Delta: -1 + 2*rng.Float64(),
		Gamma: 0.2 * rng.Float64(),
		Theta: -0.1 * rng.Float64(),
		Vega:  rng.Float64(),
	}
}

// PortfolioGreeks sums placeholder Greeks across all positions.
func PortfolioGreeks(positions []domain.Position) domain.Greeks {
	var total domain.Greeks
	for _, pos := range positions {
		g := PositionGreeksFor(pos)
		total.Delta += g.Delta
		total.Gamma += g.Gamma
		total.Theta += g.Theta
		total.Vega += g.Vega
	}
	return total
}

// PerPositionGreeks returns placeholder Greeks for each position, keyed by
// symbol and quantity.
func PerPositionGreeks(positions []domain.Position) []domain.PositionGreeks {
	result := make([]domain.PositionGreeks, 0, len(positions))
	for _, pos := range positions {
		result = append(result, domain.PositionGreeks{
			Symbol:   pos.Symbol,
			Quantity: pos.Quantity,
			Greeks:   PositionGreeksFor(pos),
		})
	}
	return result
}
