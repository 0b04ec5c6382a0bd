// Package io provides JSON export and import of solve reports.
//
// # Overview
//
// A report records everything needed to reproduce and inspect one run: the
// instance, the metric, the colony parameters and seed, the best tour and
// the best-so-far length after every generation. It is meant for
// plotting convergence and for feeding results to other tools; the TSPLIB
// tour file stays the canonical output.
//
// # JSON Format
//
//	{
//	  "run_id": "0b6f0c9e-...",
//	  "instance": {"name": "att48", "path": "data/att48.tsp", "cities": 48},
//	  "metric": "ATT",
//	  "params": {"ants": 100, "iterations": 200, "alpha": 0.8, "beta": 5,
//	             "evaporation": 0.7, "deposit": 500, "seed": 7},
//	  "length": 33523,
//	  "tour": [1, 8, 38, ...],
//	  "found": {"iteration": 143, "ant": 61},
//	  "history": [40312, 38855, ...],
//	  "cached": false,
//	  "generated_at": "2026-10-14T09:30:00Z"
//	}
//
// Tour entries are 1-based city positions, as in TSPLIB tour files. The
// worker count is not part of the parameters because it never changes the
// result.
//
// # Usage
//
//	r := io.NewReport(result.RunID, input, inst, metric, cfg, sol)
//	if err := io.ExportReport(r, "run.json"); err != nil {
//	    return err
//	}
//
//	r, err := io.ImportReport("run.json")
//	order := r.Order() // 0-based, ready for rendering
package io
