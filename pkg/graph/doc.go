// Package graph builds the toolpath connectivity graph from raw line
// segments and runs the structural analyses on top of it.
//
// A SpatialPaths graph owns one PathSegment per input line. Each segment is
// classified once into an Orientation and carries the ids of the segments
// whose endpoints coincide with its start and end within tolerance. On top
// of the graph the package provides:
//
//   - Z-layer clustering: segments bucketed by rounded midpoint height and
//     split into connected components inside each bucket.
//   - Vertical/angled pairing: each vertical is matched with the first
//     angled-down segment that shares its highest point.
//   - Chain building: pairs are concatenated into alternating bracing
//     polylines.
//
// Data problems never abort a run. They are collected as Diagnostic values
// alongside whatever output could still be produced.
package graph
