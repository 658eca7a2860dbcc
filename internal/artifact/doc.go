// Package artifact manages the serving artifacts produced by the offline
// retraining job: domain centroids, Platt calibration parameters and the
// linear classifier.
//
// Artifacts for one training run form a Snapshot (a generation). The
// provider publishes the active snapshot behind an atomic pointer: writers
// build a fully new snapshot off to the side and publish it with a single
// store, so readers never observe a half-updated parameter set and never
// mix centroid generations in one fusion pass.
//
// A background Refresher polls the store for a newly promoted generation,
// validates it against the configured embedding model and domain set, and
// swaps it in. Superseded snapshots stay in the store for rollback.
package artifact
