// Package pkg provides the core libraries for antour, an Ant System solver
// for the symmetric traveling salesman problem.
//
// # Overview
//
// antour reads TSPLIB instances, searches for a short closed tour with a
// colony of ants that share a pheromone field, and writes the best tour in
// TSPLIB tour format. The pkg directory is organized into three areas:
//
//  1. Domain logic: [distance], [colony]
//  2. Formats and output: [tsplib], [render], [io]
//  3. Orchestration and infrastructure: [pipeline], [cache], [config],
//     [errors], [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow through antour:
//
//	TSPLIB instance (.tsp / .tsp.gz)
//	         ↓
//	    [tsplib] package (parse coordinates)
//	         ↓
//	    [distance] package (metric + dense distance matrix)
//	         ↓
//	    [colony] package (Ant System search)
//	         ↓
//	    TSPLIB tour, SVG/PNG/PDF drawing, JSON report
//
// # Quick Start
//
// Solve an instance directly:
//
//	inst, _ := tsplib.Load("att48.tsp")
//	dist, _ := distance.NewMatrix(inst.Points(), tsplib.InferMetric(inst, "att48.tsp"))
//
//	cfg := colony.DefaultConfig()
//	cfg.Seed = 7
//	c, _ := colony.New(dist, cfg)
//	sol, _ := c.Run(ctx)
//
//	_ = tsplib.SaveTour("att48.tsp.opt.tour", tsplib.NewTour("att48.tsp", sol.Tour, sol.Length))
//
// Or let [pipeline] handle loading, caching, writing and drawing:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Input: "att48.tsp", Colony: cfg, SeedSet: true})
//
// # Main Packages
//
// [distance] - EUC_2D, ATT and GEO metrics and a symmetric distance matrix.
//
// [colony] - Pheromone field, roulette-wheel tour construction, the
// evaporate-and-deposit update rule and the generation driver. Results are
// deterministic for a seed at any worker count.
//
// [tsplib] - Instance reader (plain or gzip) and tour reader/writer.
//
// [render] - Tour drawings via Graphviz, with SVG to PNG/PDF conversion.
//
// [io] - JSON run reports.
//
// [pipeline] - The solve pipeline (load → prepare → solve → write → draw)
// used by every command.
//
// [cache] - Solution cache with file, Redis and null backends.
//
// [config] - TOML configuration file, .env and ANTOUR_* environment variables.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/colony/...     # Specific package
//
// [distance]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/distance
// [colony]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/colony
// [tsplib]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/tsplib
// [render]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/render
// [io]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/antour/pkg/buildinfo
package pkg
