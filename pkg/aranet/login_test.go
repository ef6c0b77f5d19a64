package aranet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveSpaceIDSingle(t *testing.T) {
	login := &LoginResponse{Spaces: map[string]string{"100": "Main"}}
	id, err := resolveSpaceID(login, "Main", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "100", id)
}

func TestResolveSpaceIDSingleNameMismatch(t *testing.T) {
	// a lone space is used even under the wrong name
	login := &LoginResponse{Spaces: map[string]string{"100": "Office"}}
	id, err := resolveSpaceID(login, "Main", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "100", id)
}

func TestResolveSpaceIDMultiple(t *testing.T) {
	login := &LoginResponse{Spaces: map[string]string{"100": "Main", "200": "Lab"}}
	id, err := resolveSpaceID(login, "Lab", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "200", id)
}

func TestResolveSpaceIDNotFound(t *testing.T) {
	login := &LoginResponse{Spaces: map[string]string{"100": "Main", "200": "Lab"}}
	_, err := resolveSpaceID(login, "Warehouse", zap.NewNop())
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestResolveSpaceIDAmbiguous(t *testing.T) {
	login := &LoginResponse{Spaces: map[string]string{"100": "Main", "200": "Main"}}
	_, err := resolveSpaceID(login, "Main", zap.NewNop())
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestResolveSpaceIDEmpty(t *testing.T) {
	_, err := resolveSpaceID(&LoginResponse{}, "Main", zap.NewNop())
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
