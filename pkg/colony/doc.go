// Package colony implements the Ant System metaheuristic for the symmetric
// Travelling Salesman Problem.
//
// A [Colony] runs a fixed number of generations. In every generation each of
// the configured ants builds a complete tour against a frozen pheromone
// snapshot, choosing the next city by roulette-wheel sampling over
//
//	weight(i) = τ[cur][i]^α · (1 / d[cur][i])^β
//
// After all ants of the generation have finished (the only synchronization
// point), the pheromone [Field] is replaced by a new generation: every entry
// evaporates by the configured fraction and each ant deposits
// Deposit/length on the edges of its tour.
//
// # Determinism
//
// Ants never share a random source. The source of ant k in generation g is
// seeded from (Config.Seed, g·Ants+k), so a fixed seed yields the same
// result for any Config.Workers value.
//
// # Numeric edge cases
//
//   - Zero-length edges (duplicate coordinates) are clamped to [MinDistance]
//     before inversion and become overwhelmingly preferred.
//   - If floating-point rounding keeps the running sum below the draw, or
//     the total weight is zero or NaN, the first unvisited candidate is
//     selected.
//   - If the total weight overflows to +Inf, the first unvisited candidate
//     with the largest weight is selected.
//   - Both fallbacks are counted in [Generation].Fallbacks.
//   - Pheromone entries are floored at [MinPheromone] and stay strictly
//     positive for any number of generations.
//
// # Example
//
//	dist, _ := distance.NewMatrix(points, distance.EUC2D)
//	c, _ := colony.New(dist, colony.DefaultConfig())
//	sol, err := c.Run(ctx)
package colony
