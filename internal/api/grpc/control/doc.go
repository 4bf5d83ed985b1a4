// Package control implements the gRPC transport for the loop guard control API.
//
// It adapts domain types to protobuf messages and exposes a server that calls
// into a provided business-service interface.
package control
