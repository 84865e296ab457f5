package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
)

// defaultCredentialsToken issues a bearer token from the host's ambient
// Google credentials: a service-account file or an attached identity,
// whatever the default credential chain finds.
func defaultCredentialsToken(ctx context.Context) (string, error) {
	log.Debug().Msg("exchanging Google default credentials for an oauth2 token")

	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return "", fmt.Errorf("loading default credentials: %w", err)
	}
	token, err := creds.TokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("issuing token from default credentials: %w", err)
	}
	return NormalizeToken(token.AccessToken), nil
}
