// Package guard contains core domain types for the loop guard.
//
// It defines Observation (a label and count reported by a checkpoint),
// Alert (the transient record emitted on overflow), Frame (one captured call
// stack entry), Actor (who changed the settings) and Snapshot (the guard
// settings at a point in time) with Clone helpers to avoid leaking internal
// references.
package guard
