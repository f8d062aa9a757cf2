package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
)

func TestInitTracer_WithoutEndpoint(t *testing.T) {
	tp, err := InitTracer(context.Background(), config.TracingConfig{}, logger.NewNop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, tp.Shutdown(context.Background())) }()

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
