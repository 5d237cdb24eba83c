package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("BLOG_OTEL_ENDPOINT", "")
	t.Setenv("BLOG_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "test-service")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("BLOG_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("BLOG_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "test-service")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestOptions(t *testing.T) {
	require.Len(t, ServerOptions(), 1)
	require.Len(t, ClientDialOptions(), 2)
}
