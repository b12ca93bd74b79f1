package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteVerifier asks an identity service who owns a token. The service is
// expected to answer GET <url> with {"id": "...", "email": "..."} for a valid
// bearer token and a non-2xx status otherwise.
type RemoteVerifier struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

func NewRemoteVerifier(url, apiKey string) *RemoteVerifier {
	return &RemoteVerifier{
		URL:        strings.TrimSpace(url),
		APIKey:     strings.TrimSpace(apiKey),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, ErrMissingToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL, nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if v.APIKey != "" {
		req.Header.Set("apikey", v.APIKey)
	}
	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("identity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Identity{}, ErrInvalidToken
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Identity{}, fmt.Errorf("%w: identity service status %d: %s", ErrInvalidToken, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var user remoteUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Identity{}, fmt.Errorf("%w: decode identity: %v", ErrInvalidToken, err)
	}
	if user.ID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: user.ID, Email: user.Email}, nil
}

var _ Verifier = (*RemoteVerifier)(nil)
