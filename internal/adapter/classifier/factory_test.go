package classifier

import (
	"context"
	"testing"

	"github.com/moviedata/reception/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New(&config.Config{ClassifierBackend: config.BackendVader}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Vader{}, c)

	c, err = New(&config.Config{ClassifierBackend: config.BackendHTTP, ClassifierURL: "http://localhost:9/model"}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, c)

	c, err = New(&config.Config{ClassifierBackend: config.BackendVader}, memoryCache{}, nil)
	require.NoError(t, err)
	cached, ok := c.(*Cached)
	require.True(t, ok)
	assert.Equal(t, BackendVader, cached.model)

	_, err = New(&config.Config{ClassifierBackend: "onnx"}, nil, nil)
	assert.Error(t, err)
}

func TestReady_WithoutBreaker(t *testing.T) {
	assert.NoError(t, Ready(context.Background(), NewVader(nil)))
	assert.NoError(t, Ready(context.Background(), NewCached(NewVader(nil), memoryCache{}, BackendVader)))
}
