package otelhelper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/stateforge/stateforge/pkg/otelhelper"
)

func TestInitTracer(t *testing.T) {
	ctx := context.Background()

	tp, err := otelhelper.InitTracer(ctx, "stateforge-test")

	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.Same(t, tp, otel.GetTracerProvider())

	require.NoError(t, tp.Shutdown(ctx))
}
