package pb

import (
	"context"

	"google.golang.org/grpc/metadata"

	domain "github.com/oshokin/loop-guard/internal/domain/guard"
)

// Metadata keys carrying the caller identity.
const (
	MetadataActorHostname = "x-actor-hostname"
	MetadataActorUsername = "x-actor-username"
)

// AppendActor attaches the actor to the outgoing request metadata.
func AppendActor(ctx context.Context, actor *domain.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx,
		MetadataActorHostname, actor.Hostname,
		MetadataActorUsername, actor.Username,
	)
}

// ActorFromIncoming extracts the actor from incoming request metadata.
// It returns nil when the caller sent no identity.
func ActorFromIncoming(ctx context.Context) *domain.Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	var (
		hostnames = md.Get(MetadataActorHostname)
		usernames = md.Get(MetadataActorUsername)
	)

	if len(hostnames) == 0 && len(usernames) == 0 {
		return nil
	}

	actor := new(domain.Actor)

	if len(hostnames) > 0 {
		actor.Hostname = hostnames[0]
	}

	if len(usernames) > 0 {
		actor.Username = usernames[0]
	}

	return actor
}
