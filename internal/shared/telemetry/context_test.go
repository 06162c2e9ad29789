package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, FromContext(context.Background()))

	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}
