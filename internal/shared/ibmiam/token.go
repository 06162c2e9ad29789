// Package ibmiam exchanges an IBM Cloud API key for IAM bearer tokens and
// exposes them as an oauth2.TokenSource.
package ibmiam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const grantType = "urn:ibm:params:oauth:grant-type:apikey"

// expiryDelta refreshes tokens slightly before the server-side expiry.
const expiryDelta = 60 * time.Second

type tokenSource struct {
	ctx      context.Context
	apiKey   string
	tokenURL string
	client   *http.Client
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Expiration   int64  `json:"expiration"`
	ErrorMessage string `json:"errorMessage"`
}

// TokenSource returns a caching oauth2.TokenSource for apiKey. ctx bounds
// every token request; base is used for the token exchange itself.
func TokenSource(ctx context.Context, apiKey, tokenURL string, base *http.Client) oauth2.TokenSource {
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	return oauth2.ReuseTokenSource(nil, &tokenSource{
		ctx:      ctx,
		apiKey:   apiKey,
		tokenURL: tokenURL,
		client:   base,
	})
}

// NewClient returns an http.Client that authenticates every request with an
// IAM bearer token. timeout bounds each request including the token fetch.
func NewClient(ctx context.Context, apiKey, tokenURL string, timeout time.Duration) *http.Client {
	base := &http.Client{Timeout: timeout}
	client := oauth2.NewClient(ctx, TokenSource(ctx, apiKey, tokenURL, base))
	client.Timeout = timeout
	return client
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("grant_type", grantType)
	form.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("iam token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("iam token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("iam token read: %w", err)
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("iam token parse (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(parsed.ErrorMessage)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("iam token: Unauthorized: %s", msg)
		}
		return nil, fmt.Errorf("iam token: status %d: %s", resp.StatusCode, msg)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("iam token: empty access_token")
	}

	tok := &oauth2.Token{
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
		TokenType:    "Bearer",
	}
	switch {
	case parsed.Expiration > 0:
		tok.Expiry = time.Unix(parsed.Expiration, 0).Add(-expiryDelta)
	case parsed.ExpiresIn > 0:
		tok.Expiry = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - expiryDelta)
	}
	return tok, nil
}
