// Package pb holds the wire contract of the loop guard control API.
//
// The service is described in api/proto/loopguard/v1/control.proto. Its
// messages are protobuf well-known types, so the service descriptor, client
// and server registration are maintained here by hand instead of generated.
// The package also converts settings snapshots to and from their Struct form
// and carries the caller identity in gRPC metadata.
package pb
