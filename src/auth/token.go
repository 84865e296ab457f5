package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	stsTokenURL        = "https://sts.googleapis.com/v1/token"
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

	// Both token endpoints must answer within this window. Exceeding it is
	// fatal for the run, never a retry trigger.
	requestTimeout = 3 * time.Second
)

// StatusError is a transport failure from a token endpoint. It carries the
// HTTP status and the raw response body so that credential-configuration
// errors can be told apart from transient network errors.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: code: %d, body: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Provider acquires registry bearer tokens. The federation context is read
// once at construction time; tokens are fetched fresh on every call and
// never cached.
type Provider struct {
	fc     *FederationContext
	client *http.Client
	stsURL string
}

// NewProvider builds a Provider from the ambient environment.
func NewProvider() *Provider {
	return &Provider{
		fc:     ReadFederationContext(),
		client: &http.Client{Timeout: requestTimeout},
		stsURL: stsTokenURL,
	}
}

// Token returns a bearer token for the container registry.
//
// With a CI federation context, the CI-issued OIDC token is exchanged for a
// federated Google access token. Without one, ambient default credentials
// are used. A failure on either path is terminal; nothing is retried.
func (p *Provider) Token(ctx context.Context) (string, error) {
	if p.fc == nil {
		log.Debug().Msg("no CI identity context, using ambient default credentials")
		return defaultCredentialsToken(ctx)
	}

	log.Debug().Msg("exchanging federated CI token for an oauth2 token")
	idToken, err := p.fetchIDToken(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching CI identity token: %w", err)
	}
	accessToken, err := p.exchangeToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("exchanging federated token: %w", err)
	}
	return accessToken, nil
}

type idTokenResponse struct {
	Value string `json:"value"`
}

type tokenExchangeRequest struct {
	GrantType          string `json:"grantType"`
	Audience           string `json:"audience"`
	Scope              string `json:"scope"`
	RequestedTokenType string `json:"requestedTokenType"`
	SubjectToken       string `json:"subjectToken"`
	SubjectTokenType   string `json:"subjectTokenType"`
}

type tokenExchangeResponse struct {
	AccessToken string `json:"access_token"`
}

// fetchIDToken asks the CI identity endpoint for an OIDC token scoped to
// the workload identity pool.
func (p *Provider) fetchIDToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.fc.IDTokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	q := req.URL.Query()
	q.Set("audience", "https://iam.googleapis.com/"+p.fc.IdentityPool)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+p.fc.IDTokenBearer)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", p.fc.IDTokenURL, err)
	}

	var idToken idTokenResponse
	if err := decodeResponse(p.fc.IDTokenURL, resp, &idToken); err != nil {
		return "", err
	}
	return idToken.Value, nil
}

// exchangeToken trades a CI-issued identity token for a federated Google
// access token via the OAuth 2.0 token-exchange grant.
func (p *Provider) exchangeToken(ctx context.Context, subjectToken string) (string, error) {
	body, err := json.Marshal(tokenExchangeRequest{
		GrantType:          "urn:ietf:params:oauth:grant-type:token-exchange",
		Audience:           "//iam.googleapis.com/" + p.fc.IdentityPool,
		Scope:              cloudPlatformScope,
		RequestedTokenType: "urn:ietf:params:oauth:token-type:access_token",
		SubjectToken:       subjectToken,
		SubjectTokenType:   "urn:ietf:params:oauth:token-type:jwt",
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.stsURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("POST %s: %w", p.stsURL, err)
	}

	var token tokenExchangeResponse
	if err := decodeResponse(p.stsURL, resp, &token); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// decodeResponse decodes a JSON token-endpoint response. Non-2xx statuses
// and undecodable bodies both surface the status code and the literal body,
// never a bare parse error.
func decodeResponse(endpoint string, resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", endpoint, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// NormalizeToken strips a literal "Bearer " prefix if present; otherwise
// the token is used verbatim. Credential backends disagree on whether the
// prefix is included.
func NormalizeToken(token string) string {
	return strings.TrimPrefix(token, "Bearer ")
}
