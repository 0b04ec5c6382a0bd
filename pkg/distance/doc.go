// Package distance computes TSPLIB edge weights between 2-D points and holds
// them in a dense symmetric matrix.
//
// # Metrics
//
// Three TSPLIB rounding rules are supported:
//
//   - [EUC2D]: Euclidean distance rounded to the nearest integer.
//   - [ATT]: pseudo-Euclidean distance, ceil(sqrt((dx²+dy²)/10)). The ceiling
//     (not nearest) is what the att48/att532 benchmark optima were computed with.
//   - [GEO]: great-circle distance on a sphere of radius 6378.388 km, with
//     coordinates read as degrees; floor(R·acos(·) + 1).
//
// All metrics are non-negative and non-decreasing in Euclidean separation.
//
// # Matrix
//
// [NewMatrix] builds an n×n table once, computing each unordered pair a single
// time and mirroring it. The table is stored in one flat slice addressed by
// row*n+col so the row scan in tour construction stays cache friendly. A
// [Matrix] is never mutated after construction and is safe for concurrent
// readers.
package distance
