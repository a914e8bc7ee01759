package monitor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oshokin/greenhouse-monitor/internal/logger"
)

// Metadata keys identifying the caller.
const (
	MetadataHostname = "x-ghc-hostname"
	MetadataUsername = "x-ghc-username"
)

// LoggingInterceptor logs every unary call with the caller identity and result.
func LoggingInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	started := time.Now()

	resp, err := handler(ctx, req)

	kvs := []any{
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(started),
	}

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		kvs = append(kvs,
			"hostname", first(md.Get(MetadataHostname)),
			"username", first(md.Get(MetadataUsername)),
		)
	}

	logger.DebugKV(ctx, "Status request served", kvs...)

	return resp, err
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}

	return values[0]
}
