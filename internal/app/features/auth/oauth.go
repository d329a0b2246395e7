// internal/app/features/auth/oauth.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	userstore "github.com/Thomas-Sedhom/LMS/internal/app/store/users"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

const (
	stateCookieName = "oauthState"
	stateTTL        = 10 * time.Minute
)

func googleConfig(cfg Config) *oauth2.Config {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.BaseURL + "/api/v1/auth/google/redirect",
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func facebookConfig(cfg Config) *oauth2.Config {
	if cfg.FacebookClientID == "" || cfg.FacebookClientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     cfg.FacebookClientID,
		ClientSecret: cfg.FacebookClientSecret,
		RedirectURL:  cfg.BaseURL + "/api/v1/auth/facebook/redirect",
		Scopes:       []string{"email", "public_profile"},
		Endpoint:     facebook.Endpoint,
	}
}

// oauthProfile is the provider-independent identity we extract from the
// userinfo endpoints.
type oauthProfile struct {
	Email     string
	FirstName string
	LastName  string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/login and /auth/facebook/login                              |
| Redirect the browser to the provider's consent screen.                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	h.serveOAuthLogin(w, r, h.Google, "google")
}

func (h *Handler) HandleFacebookLogin(w http.ResponseWriter, r *http.Request) {
	h.serveOAuthLogin(w, r, h.Facebook, "facebook")
}

func (h *Handler) serveOAuthLogin(w http.ResponseWriter, r *http.Request, conf *oauth2.Config, provider string) {
	if conf == nil {
		h.Log.Warn("oauth provider not configured", zap.String("provider", provider))
		h.redirectFrontend(w, r, "error=oauth_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate oauth state", zap.Error(err))
		h.redirectFrontend(w, r, "error=internal")
		return
	}

	// The state lives in two places: a one-time cache entry proves the
	// callback was initiated by us, and a signed cookie binds it to this
	// browser.
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.oauth_login")
	defer cancel()

	if err := h.Cache.Set(ctx, stateKey(provider, state), provider, stateTTL); err != nil {
		h.Log.Error("failed to save oauth state", zap.Error(err))
		h.redirectFrontend(w, r, "error=internal")
		return
	}

	encoded, err := h.StateCodec.Encode(stateCookieName, state)
	if err != nil {
		h.Log.Error("failed to encode oauth state cookie", zap.Error(err))
		h.redirectFrontend(w, r, "error=internal")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, conf.AuthCodeURL(state, oauth2.AccessTypeOffline), http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/redirect and /auth/facebook/redirect                        |
| Validate state, exchange the code, fetch the profile, sign the student in    |
| (creating the account on first login), and bounce back to the frontend.      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	h.serveOAuthCallback(w, r, h.Google, "google", fetchGoogleProfile)
}

func (h *Handler) HandleFacebookCallback(w http.ResponseWriter, r *http.Request) {
	h.serveOAuthCallback(w, r, h.Facebook, "facebook", fetchFacebookProfile)
}

type profileFetcher func(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*oauthProfile, error)

func (h *Handler) serveOAuthCallback(
	w http.ResponseWriter,
	r *http.Request,
	conf *oauth2.Config,
	provider string,
	fetchProfile profileFetcher,
) {
	if conf == nil {
		h.redirectFrontend(w, r, "error=oauth_not_configured")
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("oauth consent denied",
			zap.String("provider", provider),
			zap.String("error", errParam))
		h.redirectFrontend(w, r, "error=oauth_denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" || !h.consumeState(r, provider, state) {
		h.Log.Warn("invalid or expired oauth state", zap.String("provider", provider))
		h.redirectFrontend(w, r, "error=invalid_state")
		return
	}
	clearStateCookie(w, h.Secure)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectFrontend(w, r, "error=invalid_code")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "auth.oauth_callback")
	defer cancel()

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		h.Log.Error("oauth code exchange failed",
			zap.String("provider", provider),
			zap.Error(err))
		h.redirectFrontend(w, r, "error=token_exchange")
		return
	}

	profile, err := fetchProfile(ctx, conf, token)
	if err != nil {
		h.Log.Error("failed to fetch oauth profile",
			zap.String("provider", provider),
			zap.Error(err))
		h.redirectFrontend(w, r, "error=user_info")
		return
	}
	if profile.Email == "" {
		h.Log.Warn("oauth profile has no email", zap.String("provider", provider))
		h.redirectFrontend(w, r, "error=user_info")
		return
	}

	user, err := h.findOrCreateStudent(ctx, profile)
	if err != nil {
		h.Log.Error("oauth sign-in failed",
			zap.String("provider", provider),
			zap.String("email", profile.Email),
			zap.Error(err))
		h.redirectFrontend(w, r, "error=internal")
		return
	}

	pair, err := h.Tokens.GeneratePair(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		h.Log.Error("failed to issue tokens", zap.Error(err))
		h.redirectFrontend(w, r, "error=internal")
		return
	}
	sysauth.SetAuthCookies(w, pair, h.Secure)

	h.Log.Info("oauth login",
		zap.String("provider", provider),
		zap.String("user_id", user.ID.Hex()))

	http.Redirect(w, r, h.FrontendURL+"/login.html", http.StatusSeeOther)
}

// consumeState checks the signed state cookie against the callback's state
// parameter and burns the one-time cache entry. Both must hold.
func (h *Handler) consumeState(r *http.Request, provider, state string) bool {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return false
	}
	var fromCookie string
	if err := h.StateCodec.Decode(stateCookieName, cookie.Value, &fromCookie); err != nil {
		return false
	}
	if fromCookie != state {
		return false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.oauth_state")
	defer cancel()

	if _, err := h.Cache.Get(ctx, stateKey(provider, state)); err != nil {
		return false
	}
	if err := h.Cache.Delete(ctx, stateKey(provider, state)); err != nil {
		h.Log.Warn("failed to delete oauth state", zap.Error(err))
	}
	return true
}

// findOrCreateStudent looks the student up by email, creating the account on
// first OAuth login. OAuth accounts carry no password hash.
func (h *Handler) findOrCreateStudent(ctx context.Context, profile *oauthProfile) (*models.User, error) {
	user, err := h.Students.GetByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return nil, err
	}

	created, err := h.Students.Create(ctx, models.User{
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.Email,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			// Lost a race with a concurrent first login; the account exists now.
			return h.Students.GetByEmail(ctx, profile.Email)
		}
		return nil, err
	}
	return &created, nil
}

func (h *Handler) redirectFrontend(w http.ResponseWriter, r *http.Request, query string) {
	target := h.FrontendURL + "/login.html"
	if query != "" {
		target += "?" + query
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func clearStateCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func stateKey(provider, state string) string {
	return "oauth-state-" + provider + "-" + state
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Provider userinfo endpoints                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type googleUserInfo struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

func fetchGoogleProfile(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*oauthProfile, error) {
	var info googleUserInfo
	if err := fetchUserInfo(ctx, token, "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return nil, err
	}
	first, last := info.GivenName, info.FamilyName
	if first == "" {
		first, last = splitDisplayName(info.Name)
	}
	return &oauthProfile{Email: info.Email, FirstName: first, LastName: last}, nil
}

type facebookUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func fetchFacebookProfile(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*oauthProfile, error) {
	var info facebookUserInfo
	if err := fetchUserInfo(ctx, token, "https://graph.facebook.com/me?fields=id,name,email", &info); err != nil {
		return nil, err
	}
	first, last := splitDisplayName(info.Name)
	return &oauthProfile{Email: info.Email, FirstName: first, LastName: last}, nil
}

func fetchUserInfo(ctx context.Context, token *oauth2.Token, url string, dst any) error {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode user info: %w", err)
	}
	return nil
}

// splitDisplayName breaks "First Middle Last" into first and last parts.
func splitDisplayName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
