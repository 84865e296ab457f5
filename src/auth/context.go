// Package auth acquires short-lived bearer tokens for the container
// registry, either through GitHub→GCP workload identity federation (in CI)
// or through ambient Google default credentials (locally).
package auth

import "os"

// Environment variables carrying the ambient CI federation signals.
const (
	envIdentityPool  = "WORKLOAD_IDENTITY_POOL"
	envIDTokenURL    = "ACTIONS_ID_TOKEN_REQUEST_URL"
	envIDTokenBearer = "ACTIONS_ID_TOKEN_REQUEST_TOKEN"
)

// FederationContext is the immutable CI identity context. It exists only
// when every ambient signal is present; the rest of the token state machine
// is a function of this value alone.
type FederationContext struct {
	// IdentityPool is the workload identity pool identifier.
	IdentityPool string
	// IDTokenURL is the CI endpoint that issues OIDC identity tokens.
	IDTokenURL string
	// IDTokenBearer authenticates requests against IDTokenURL.
	IDTokenBearer string
}

// ReadFederationContext reads the ambient signals once. It returns nil
// unless all three are set: a partial context must never select a partial
// federated attempt.
func ReadFederationContext() *FederationContext {
	pool := os.Getenv(envIdentityPool)
	url := os.Getenv(envIDTokenURL)
	bearer := os.Getenv(envIDTokenBearer)

	if pool == "" || url == "" || bearer == "" {
		return nil
	}
	return &FederationContext{
		IdentityPool:  pool,
		IDTokenURL:    url,
		IDTokenBearer: bearer,
	}
}
