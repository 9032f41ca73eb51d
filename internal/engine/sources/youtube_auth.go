package sources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anatolykoptev/go_community/internal/engine"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ScopeYouTubeForceSSL lets the app read the channel and post replies.
const ScopeYouTubeForceSSL = "https://www.googleapis.com/auth/youtube.force-ssl"

// OAuthApp is the Google OAuth2 client of this server.
type OAuthApp struct {
	conf *oauth2.Config
	hc   *http.Client
}

var _ engine.Authenticator = (*OAuthApp)(nil)

// NewOAuthApp parses a client-secret JSON (as downloaded from the Cloud
// console) and uses redirectURL as the callback.
func NewOAuthApp(clientJSON, redirectURL string, hc *http.Client) (*OAuthApp, error) {
	conf, err := google.ConfigFromJSON([]byte(clientJSON), ScopeYouTubeForceSSL)
	if err != nil {
		return nil, fmt.Errorf("oauth client config: %w", err)
	}
	if redirectURL != "" {
		conf.RedirectURL = redirectURL
	}
	return &OAuthApp{conf: conf, hc: hc}, nil
}

func (a *OAuthApp) ctx(ctx context.Context) context.Context {
	if a.hc == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.hc)
}

// AuthURL returns the consent page URL. Offline access with forced consent
// makes Google return a refresh token every time.
func (a *OAuthApp) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades the redirect's code for a token.
func (a *OAuthApp) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := a.conf.Exchange(a.ctx(ctx), code)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// Channel returns a Data API client that refreshes tok as needed.
func (a *OAuthApp) Channel(tok *oauth2.Token) engine.Channel {
	return NewYouTube(a.conf.Client(a.ctx(context.Background()), tok))
}
