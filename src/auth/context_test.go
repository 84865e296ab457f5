package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFederationContextAllSignalsPresent(t *testing.T) {
	t.Setenv(envIdentityPool, "projects/123/locations/global/workloadIdentityPools/ci/providers/github")
	t.Setenv(envIDTokenURL, "https://ci.example.com/token")
	t.Setenv(envIDTokenBearer, "req-token")

	fc := ReadFederationContext()
	require.NotNil(t, fc)
	assert.Equal(t, "https://ci.example.com/token", fc.IDTokenURL)
	assert.Equal(t, "req-token", fc.IDTokenBearer)
}

func TestReadFederationContextIsAllOrNothing(t *testing.T) {
	signals := []string{envIdentityPool, envIDTokenURL, envIDTokenBearer}

	// Any two of three signals must select the ambient path.
	for _, missing := range signals {
		t.Run("missing "+missing, func(t *testing.T) {
			for _, name := range signals {
				if name == missing {
					t.Setenv(name, "")
				} else {
					t.Setenv(name, "value")
				}
			}
			assert.Nil(t, ReadFederationContext())
		})
	}
}
