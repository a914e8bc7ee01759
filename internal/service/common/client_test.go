//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/oshokin/greenhouse-monitor/internal/api/grpc/monitor"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	_, hasMetadata := metadata.FromOutgoingContext(ctx)
	require.False(t, hasMetadata)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestClient_callContext_Actor attaches the caller identity as metadata.
func TestClient_callContext_Actor(t *testing.T) {
	t.Parallel()

	c := new(Client)
	WithActor(&Actor{Hostname: "bench", Username: "grower"})(c)
	WithCallTimeout(-time.Second)(c)

	ctx, cancel := c.callContext(context.Background())
	defer cancel()

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	require.Equal(t, []string{"bench"}, md.Get(monitor.MetadataHostname))
	require.Equal(t, []string{"grower"}, md.Get(monitor.MetadataUsername))
}

// TestDial_AppliesOptions keeps the default timeout unless overridden.
func TestDial_AppliesOptions(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "127.0.0.1:1", WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	require.Equal(t, 3*time.Second, c.callTimeout)
}
