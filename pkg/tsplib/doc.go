// Package tsplib reads TSPLIB instance files and reads and writes TSPLIB
// tour files.
//
// # Instances
//
// Only symmetric coordinate instances are supported:
//
//	NAME : att48
//	TYPE : TSP
//	DIMENSION : 48
//	EDGE_WEIGHT_TYPE : ATT
//	NODE_COORD_SECTION
//	1 6734 1453
//	2 2233 10
//	...
//	EOF
//
// The coordinate section ends at an EOF line, a line starting with -1, the
// next *_SECTION keyword, or end of input. Files ending in .gz are
// decompressed transparently by [Load].
//
// City identifiers are kept for output only; everywhere else a city is its
// 0-based position in [Instance.Cities].
//
// # Tours
//
// [WriteTour] renumbers 0-based indices back to 1-based identifiers:
//
//	NAME: att48.tsp.opt.tour
//	COMMENT: Length 33523
//	TYPE: TOUR
//	DIMENSION: 48
//	TOUR_SECTION
//	1
//	8
//	...
//	-1
//	EOF
//
// [ReadTour] parses the same format back into 0-based indices.
package tsplib
