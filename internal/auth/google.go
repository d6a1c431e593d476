package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/lrcr/todoplane/internal/services"
)

// GoogleProvider runs the authorization-code flow against Google and
// resolves the resulting token to a profile via the userinfo endpoint.
type GoogleProvider struct {
	config *oauth2.Config
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				oauth2api.UserinfoProfileScope,
				oauth2api.UserinfoEmailScope,
			},
			Endpoint: google.Endpoint,
		},
	}
}

// Enabled reports whether OAuth credentials were configured.
func (p *GoogleProvider) Enabled() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthURL returns the consent page URL for the given state.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// NewState generates an opaque value tying the callback to the
// initiating browser.
func NewState() (string, error) {
	buf := make([]byte, 24)
	_, err := rand.Read(buf)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Exchange trades the authorization code for a token and fetches the
// user's profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (services.GoogleProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return services.GoogleProfile{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, p.config.TokenSource(ctx, token))
	svc, err := oauth2api.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return services.GoogleProfile{}, fmt.Errorf("failed to create oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return services.GoogleProfile{}, fmt.Errorf("failed to fetch userinfo: %w", err)
	}

	return services.GoogleProfile{
		GoogleID:    info.Id,
		DisplayName: info.Name,
		Email:       info.Email,
	}, nil
}
