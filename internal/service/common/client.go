//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/loop-guard/internal/config"
	domain "github.com/oshokin/loop-guard/internal/domain/guard"
	pb "github.com/oshokin/loop-guard/internal/pb/v1"
)

// Client wraps the gRPC ControlService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the guarded server.
	conn *grpc.ClientConn
	// api is the ControlService client interface.
	api pb.ControlServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
)

// Dial creates a gRPC client for the control API.
// Note: this uses insecure transport credentials; keep the control address on
// loopback or a trusted network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial control server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         pb.NewControlServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetSettings retrieves the current guard settings.
func (c *Client) GetSettings(ctx context.Context) (*domain.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetSettings(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return fromResponse(resp)
}

// SetThreshold changes the threshold of the remote guard.
func (c *Client) SetThreshold(ctx context.Context, actor *domain.Actor, threshold uint64) (*domain.Snapshot, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(pb.AppendActor(ctx, actor))
	defer cancel()

	resp, err := c.api.SetThreshold(callCtx, wrapperspb.UInt64(threshold))
	if err != nil {
		return nil, fmt.Errorf("set threshold: %w", err)
	}

	return fromResponse(resp)
}

// ResetAlertFlag re-arms alerting on the remote guard.
func (c *Client) ResetAlertFlag(ctx context.Context, actor *domain.Actor) (*domain.Snapshot, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(pb.AppendActor(ctx, actor))
	defer cancel()

	resp, err := c.api.ResetAlertFlag(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("reset alert flag: %w", err)
	}

	return fromResponse(resp)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// fromResponse decodes a settings response.
func fromResponse(resp *structpb.Struct) (*domain.Snapshot, error) {
	snapshot, err := pb.SettingsFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}

	return snapshot, nil
}
