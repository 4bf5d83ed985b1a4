// Package workload runs a periodic guarded job inside the server process.
//
// Each run processes a batch whose size comes from a dynamic source: a
// counted "sync" loop checked once before entry, and a condition-driven
// "drain" loop checked on every iteration. It exercises both guard
// checkpoints the way production loops use them.
package workload
