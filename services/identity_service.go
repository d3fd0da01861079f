package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hartwell-auto/hartwell-auto-api/config"
)

// IdentityProfile is the profile returned by the identity provider's
// /userinfo endpoint
type IdentityProfile struct {
	Sub   string `json:"sub"` // identity provider user ID
	Email string `json:"email"`
	Name  string `json:"name"`
}

// IdentityService fetches account profiles from the federated identity
// provider. It is used during external registration, where the caller
// presents a federated token but has no local account yet.
type IdentityService struct {
	domain     string
	httpClient *http.Client
}

// NewIdentityService creates an identity service for the configured provider
func NewIdentityService(cfg *config.Config) *IdentityService {
	return &IdentityService{
		domain: cfg.Auth0Domain,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchProfile calls the provider's /userinfo endpoint with the
// caller's own access token and returns the associated profile
func (s *IdentityService) FetchProfile(ctx context.Context, accessToken string) (*IdentityProfile, error) {
	// The domain may already carry a scheme when tests point it at a
	// local httptest server
	var endpoint string
	if strings.HasPrefix(s.domain, "http://") || strings.HasPrefix(s.domain, "https://") {
		endpoint = fmt.Sprintf("%s/userinfo", s.domain)
	} else {
		endpoint = fmt.Sprintf("https://%s/userinfo", s.domain)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var profile IdentityProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	return &profile, nil
}
