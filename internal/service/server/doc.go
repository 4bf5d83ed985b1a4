// Package server runs the guarded process: the control gRPC API, settings hot
// reload and the sample workload, all sharing one guard.
package server
