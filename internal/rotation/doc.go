// Package rotation owns the per-frame tracking core: it turns a cloud of
// candidate motion points into a smoothed tracked location, derives the
// bearing of that location from a fixed pivot, and counts one rotation
// each time the bearing returns to its reference value.
//
// Pipeline order per frame: outlier filter, centroid, exponential
// smoothing, bearing, debounced rotation detection, sample recording.
// All stages share a single TrackingState owned by a Pipeline.
//
// Dependency rule: no I/O. Frame delivery, persistence and rendering live
// in sibling packages (source, session, db, export, charts, overlay).
package rotation
