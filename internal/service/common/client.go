//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/greenhouse-monitor/internal/api/grpc/monitor"
	"github.com/oshokin/greenhouse-monitor/internal/config"
	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
)

// Client wraps the status API stub with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the controller.
	conn *grpc.ClientConn
	// api is the status service stub.
	api *monitor.Client

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is attached to every call as metadata when set.
	actor *Actor
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

// WithActor identifies the caller to the controller.
func WithActor(actor *Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial connects to the controller status API.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial controller: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         monitor.NewClient(conn),
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

// GetAlarmsRaw returns the alarm list document as received.
func (c *Client) GetAlarmsRaw(ctx context.Context) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	doc, err := c.api.GetAlarms(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get alarms: %w", err)
	}

	return doc, nil
}

// GetAlarms returns the active alarms in the order they were set.
func (c *Client) GetAlarms(ctx context.Context) ([]alarm.Record, error) {
	doc, err := c.GetAlarmsRaw(ctx)
	if err != nil {
		return nil, err
	}

	return monitor.AlarmsFromStruct(doc)
}

// GetStatusRaw returns the status document as received.
func (c *Client) GetStatusRaw(ctx context.Context) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	doc, err := c.api.GetStatus(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return doc, nil
}

// GetStatus returns the controller state after its latest cycle.
func (c *Client) GetStatus(ctx context.Context) (monitor.Snapshot, error) {
	doc, err := c.GetStatusRaw(ctx)
	if err != nil {
		return monitor.Snapshot{}, err
	}

	return monitor.SnapshotFromStruct(doc)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. The actor, if
// any, travels as outgoing metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.actor != nil {
		ctx = metadata.AppendToOutgoingContext(ctx,
			monitor.MetadataHostname, c.actor.Hostname,
			monitor.MetadataUsername, c.actor.Username,
		)
	}

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
