package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/medilink/medilink/internal/config"
	"github.com/medilink/medilink/internal/identity"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleBridge exchanges a Google OAuth authorization code for a local
// session, provisioning an account on first login.
type GoogleBridge struct {
	oauth       *oauth2.Config
	svc         *Service
	userinfoURL string
}

// NewGoogleBridge builds the bridge from environment configuration.
// Returns nil when the Google credentials are not configured.
func NewGoogleBridge(cfg config.Config, svc *Service) *GoogleBridge {
	if !cfg.GoogleEnabled() {
		return nil
	}
	return &GoogleBridge{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     endpoints.Google,
		},
		svc:         svc,
		userinfoURL: userinfoEndpoint,
	}
}

// LoginURL returns the provider consent page URL for the given state.
func (b *GoogleBridge) LoginURL(state string) string {
	return b.oauth.AuthCodeURL(state)
}

type googleProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Authenticate exchanges the callback code, fetches the verified profile
// and hands off to federated provisioning. Exchange and profile failures
// surface as ErrProvisioning.
func (b *GoogleBridge) Authenticate(ctx context.Context, code string) (string, identity.User, error) {
	tok, err := b.oauth.Exchange(ctx, code)
	if err != nil {
		return "", identity.User{}, fmt.Errorf("%w: code exchange: %v", ErrProvisioning, err)
	}
	profile, err := b.fetchProfile(ctx, tok)
	if err != nil {
		return "", identity.User{}, fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	return b.svc.ProvisionFederated(ctx, profile.Name, profile.Email)
}

func (b *GoogleBridge) fetchProfile(ctx context.Context, tok *oauth2.Token) (googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.userinfoURL, nil)
	if err != nil {
		return googleProfile{}, err
	}
	resp, err := b.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return googleProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return googleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return profile, nil
}
