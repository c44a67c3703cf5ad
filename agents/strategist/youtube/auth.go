package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"video-strategist/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const readonlyScope = "https://www.googleapis.com/auth/youtube.readonly"

func oauthConfig(cfg *config.YouTubeConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{readonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// tokenSaver persists refreshed tokens so they survive restarts.
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	mu        sync.Mutex
}

func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	newToken, err := ts.config.TokenSource(context.Background(), ts.token).Token()
	if err != nil {
		return nil, err
	}

	if newToken.AccessToken != ts.token.AccessToken {
		slog.Info("youtube token refreshed", "file", ts.tokenFile)
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			slog.Warn("failed to save refreshed token", "error", err)
		}
	}

	return newToken, nil
}

// loadToken reads a stored token. A token is usable if it can be refreshed or
// is still valid.
func loadToken(tokenFile string) (*oauth2.Token, error) {
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: no OAuth token at %s, run `strategist authorize` first: %v", config.ErrMissingCredential, tokenFile, err)
	}
	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, fmt.Errorf("%w: OAuth token at %s is expired and has no refresh token, run `strategist authorize`", config.ErrMissingCredential, tokenFile)
	}
	return tok, nil
}

// Authorize runs the OAuth device flow and stores the token in cfg.TokenFile.
// Instructions are written to out.
func Authorize(ctx context.Context, cfg *config.YouTubeConfig, out io.Writer) error {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return fmt.Errorf("%w: OAuth client is required (set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)", config.ErrMissingCredential)
	}

	tok, err := deviceFlow(ctx, oauthConfig(cfg), out)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			slog.Error("device authorization response failed", "status", retrieveErr.Response.Status, "body", strings.TrimSpace(string(retrieveErr.Body)))
		}
		return fmt.Errorf("device authorization failed: %w. Ensure your OAuth client is created as 'TVs and Limited Input devices' and that the YouTube Data API v3 is enabled", err)
	}

	if err := saveToken(cfg.TokenFile, tok); err != nil {
		return err
	}
	fmt.Fprintf(out, "Token saved to: %s\n", cfg.TokenFile)
	return nil
}

func deviceFlow(ctx context.Context, oc *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	resp, err := oc.DeviceAuth(ctx, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("unable to start device authorization: %w", err)
	}

	rule := strings.Repeat("=", 80)
	fmt.Fprintf(out, "\n%s\nYOUTUBE DEVICE AUTHORIZATION REQUIRED\n%s\n", rule, rule)
	fmt.Fprintf(out, "1. Visit %s in your browser (any device works).\n", resp.VerificationURI)
	fmt.Fprintf(out, "2. Enter this code when prompted: %s\n\n", resp.UserCode)
	if completeURL := strings.TrimSpace(resp.VerificationURIComplete); completeURL != "" {
		fmt.Fprintf(out, "   Or open directly: %s\n\n", completeURL)
	}
	fmt.Fprintf(out, "Waiting for authorization to complete... (Ctrl+C to cancel)\n")

	tok, err := oc.DeviceAccessToken(ctx, resp, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("device authorization did not complete: %w", err)
	}
	fmt.Fprintf(out, "\nAuthorization successful.\n%s\n", rule)
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	return nil
}
