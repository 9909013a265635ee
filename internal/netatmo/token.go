package netatmo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/huangsam/stationsync/internal/contract"
	"golang.org/x/oauth2"
)

const (
	tokenPath    = "/oauth2/token"
	stationScope = "read_station"
)

// NewTokenSource returns a token source that refreshes on expiry. A configured
// refresh token is used directly; otherwise the password grant obtains the first token.
func NewTokenSource(ctx context.Context, baseURL string, creds contract.Credentials, httpClient *http.Client) (oauth2.TokenSource, error) {
	if err := contract.ValidateCredentials(creds); err != nil {
		return nil, err
	}
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  baseURL + tokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{stationScope},
	}

	if creds.RefreshToken != "" {
		return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}), nil
	}

	tok, err := cfg.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}
	return cfg.TokenSource(ctx, tok), nil
}

// AccessToken returns a currently valid access token from ts.
func AccessToken(ts oauth2.TokenSource) (string, error) {
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}
	return tok.AccessToken, nil
}
