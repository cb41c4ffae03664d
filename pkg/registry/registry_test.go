package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/registry"
	"github.com/reasonchain/core/pkg/types"
)

func TestRegisterAndCanAccess(t *testing.T) {
	r := registry.New(registry.DefaultConfig())
	_, err := r.Register("c1", "s1", nil, types.AccessWrite)
	require.NoError(t, err)

	assert.True(t, r.CanAccess("c1", "s1", types.AccessRead))
	assert.True(t, r.CanAccess("c1", "s1", types.AccessWrite))
	assert.False(t, r.CanAccess("c1", "s1", types.AccessAdmin))
	assert.False(t, r.CanAccess("c1", "other-session", types.AccessRead))
}

func TestRegisterRejectsBeyondCapacity(t *testing.T) {
	cfg := registry.DefaultConfig()
	cfg.MaxClientsPerSession = 1
	r := registry.New(cfg)

	_, err := r.Register("c1", "s1", nil, types.AccessRead)
	require.NoError(t, err)

	_, err = r.Register("c2", "s1", nil, types.AccessRead)
	require.Error(t, err)
	assert.True(t, types.IsCapacityExceeded(err))
}

func TestReRegisterSameClientDoesNotCountTwice(t *testing.T) {
	cfg := registry.DefaultConfig()
	cfg.MaxClientsPerSession = 1
	r := registry.New(cfg)

	_, err := r.Register("c1", "s1", nil, types.AccessRead)
	require.NoError(t, err)
	_, err = r.Register("c1", "s1", nil, types.AccessWrite)
	require.NoError(t, err)
	assert.Equal(t, 1, r.ActiveClientCount("s1"))
}

func TestUnregisterUnknownClient(t *testing.T) {
	r := registry.New(registry.DefaultConfig())
	_, err := r.Unregister("missing")
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
}

func TestUnregisterFreesCapacitySlot(t *testing.T) {
	cfg := registry.DefaultConfig()
	cfg.MaxClientsPerSession = 1
	r := registry.New(cfg)

	_, err := r.Register("c1", "s1", nil, types.AccessRead)
	require.NoError(t, err)
	_, err = r.Unregister("c1")
	require.NoError(t, err)

	_, err = r.Register("c2", "s1", nil, types.AccessRead)
	require.NoError(t, err)
}
