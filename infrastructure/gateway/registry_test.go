package gateway_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/groupdate/domain"
	"github.com/rios0rios0/groupdate/infrastructure/gateway"
	testdoubles "github.com/rios0rios0/groupdate/test"
)

func TestGatewayRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should register and retrieve a gateway by name", func(t *testing.T) {
		t.Parallel()

		// given
		reg := gateway.NewRegistry()
		reg.Register("test-gateway", func(_ gateway.Config) domain.ServiceGateway {
			return &testdoubles.SpyGateway{}
		})

		// when
		gw, err := reg.Get("test-gateway", gateway.Config{Token: "tok"})

		// then
		require.NoError(t, err)
		assert.NotNil(t, gw)
	})

	t.Run("should return error for unknown gateway", func(t *testing.T) {
		t.Parallel()

		// given
		reg := gateway.NewRegistry()

		// when
		gw, err := reg.Get("nonexistent", gateway.Config{})

		// then
		require.Error(t, err)
		assert.Nil(t, gw)
		assert.Contains(t, err.Error(), "unknown gateway type")
	})

	t.Run("should pass the configuration to the factory", func(t *testing.T) {
		t.Parallel()

		// given
		var received gateway.Config
		reg := gateway.NewRegistry()
		reg.Register("custom", func(cfg gateway.Config) domain.ServiceGateway {
			received = cfg
			return &testdoubles.SpyGateway{}
		})

		// when
		_, err := reg.Get("custom", gateway.Config{
			Token: "my-secret-token", Owner: "acme", Repository: "platform",
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "my-secret-token", received.Token)
		assert.Equal(t, "acme", received.Owner)
		assert.Equal(t, "platform", received.Repository)
	})

	t.Run("should list registered gateway names", func(t *testing.T) {
		t.Parallel()

		// given
		reg := gateway.NewRegistry()
		reg.Register("github", func(_ gateway.Config) domain.ServiceGateway {
			return &testdoubles.SpyGateway{}
		})
		reg.Register("gitlab", func(_ gateway.Config) domain.ServiceGateway {
			return &testdoubles.SpyGateway{}
		})

		// when
		names := reg.Names()

		// then
		assert.ElementsMatch(t, []string{"github", "gitlab"}, names)
	})

	t.Run("should return empty names for empty registry", func(t *testing.T) {
		t.Parallel()

		// given
		reg := gateway.NewRegistry()

		// when
		names := reg.Names()

		// then
		assert.Empty(t, names)
	})
}
