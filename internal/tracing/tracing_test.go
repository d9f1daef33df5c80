package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-orchard-backend/config"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{ServiceName: "smart-orchard"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
