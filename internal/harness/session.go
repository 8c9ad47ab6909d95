package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/stolasapp/mercato/internal/locator"
)

// BrowserConfig configures how Chrome is launched or reached.
type BrowserConfig struct {
	// ControlURL connects to an already running browser instead of
	// launching one.
	ControlURL string
	Bin        string
	Headless   bool
	NoSandbox  bool
	// AuthDir holds one stored authentication state per role.
	AuthDir string
	// FreshLogin ignores stored states while still saving new ones.
	FreshLogin bool
	Page       PageOptions
}

// Browser is a launched (or remote) Chrome shared by every session of a run.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	base     *url.URL
	cfg      BrowserConfig
	logger   *slog.Logger
}

// Launch starts Chrome, or connects to cfg.ControlURL, for the site at
// baseURL.
func Launch(ctx context.Context, baseURL string, cfg BrowserConfig, logger *slog.Logger) (*Browser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	b := &Browser{base: base, cfg: cfg, logger: logger.With(slog.String("component", "harness.browser"))}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		b.launcher = launcher.New().Context(ctx).Headless(cfg.Headless).NoSandbox(cfg.NoSandbox)
		bin := cfg.Bin
		if bin == "" {
			bin, _ = launcher.LookPath()
		}
		if bin != "" {
			b.launcher = b.launcher.Bin(bin)
		}
		if controlURL, err = b.launcher.Launch(); err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
	}

	b.browser = rod.New().ControlURL(controlURL)
	if err = b.browser.Connect(); err != nil {
		b.kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	b.logger.InfoContext(ctx, "browser ready",
		slog.String("control_url", controlURL),
		slog.Bool("headless", cfg.Headless),
	)
	return b, nil
}

// BaseURL is the site the browser targets.
func (b *Browser) BaseURL() *url.URL { return b.base }

// Close shuts the browser down.
func (b *Browser) Close() error {
	err := b.browser.Close()
	b.kill()
	return err
}

func (b *Browser) kill() {
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

// AuthStatePath is where the stored state for role lives under dir.
func AuthStatePath(dir string, role locator.Role) string {
	return filepath.Join(dir, string(role)+".json")
}

// NewSession opens an incognito context for role, seeded with its stored
// authentication state when one exists. Guests always start anonymous.
func (b *Browser) NewSession(ctx context.Context, role locator.Role) (*Session, error) {
	incognito, err := b.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s context: %w", role, err)
	}
	s := &Session{
		browser: incognito,
		owner:   b,
		role:    role,
		logger:  b.logger.With(slog.String("role", string(role))),
	}
	if role == locator.Guest || b.cfg.AuthDir == "" || b.cfg.FreshLogin {
		return s, nil
	}

	state, err := LoadAuthState(AuthStatePath(b.cfg.AuthDir, role))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.DebugContext(ctx, "no stored auth state")
		return s, nil
	case err != nil:
		return nil, errors.Join(err, incognito.Close())
	}
	if err = incognito.SetCookies(proto.CookiesToParams(state.Cookies)); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to restore %s cookies: %w", role, err), incognito.Close())
	}
	s.authenticated = true
	return s, nil
}

// Session is one role-bound incognito browser context. It is created once
// per suite per role and closed at suite teardown.
type Session struct {
	browser *rod.Browser
	owner   *Browser
	role    locator.Role
	logger  *slog.Logger

	mu            sync.Mutex
	authenticated bool
	pages         []*Page
}

// Role is the role the session acts as.
func (s *Session) Role() locator.Role { return s.role }

// Authenticated reports whether stored auth state was restored or saved.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// NewPage opens a tab in the session.
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	rp, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	page := NewPage(rp.Context(context.WithoutCancel(ctx)), s.owner.base, s.role, s.owner.cfg.Page, s.logger)
	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.mu.Unlock()
	return page, nil
}

// Pages returns every page opened in the session.
func (s *Session) Pages() []*Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Page(nil), s.pages...)
}

// SaveAuthState stores the session's cookies for reuse by later sessions of
// the same role.
func (s *Session) SaveAuthState(ctx context.Context) error {
	if s.owner.cfg.AuthDir == "" {
		return errors.New("no auth state directory configured")
	}
	cookies, err := s.browser.Context(ctx).GetCookies()
	if err != nil {
		return fmt.Errorf("failed to read %s cookies: %w", s.role, err)
	}
	state := AuthState{Role: s.role, Cookies: cookies, SavedAt: time.Now().UTC()}
	if err = state.Save(AuthStatePath(s.owner.cfg.AuthDir, s.role)); err != nil {
		return err
	}
	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "saved auth state", slog.Int("cookies", len(cookies)))
	return nil
}

// Close disposes of the incognito context and its pages.
func (s *Session) Close() error {
	return s.browser.Close()
}

// AuthState is a role's stored login.
type AuthState struct {
	Role    locator.Role           `json:"role"`
	Cookies []*proto.NetworkCookie `json:"cookies"`
	SavedAt time.Time              `json:"saved_at"`
}

// LoadAuthState reads a stored state. A missing file yields an error
// matching fs.ErrNotExist.
func LoadAuthState(path string) (AuthState, error) {
	var state AuthState
	raw, err := os.ReadFile(path)
	if err != nil {
		return state, err
	}
	if err = json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("failed to decode auth state %s: %w", path, err)
	}
	return state, nil
}

// Save writes the state, creating its directory as needed.
func (a AuthState) Save(path string) error {
	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create auth state directory: %w", err)
	}
	if err = os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write auth state: %w", err)
	}
	return nil
}
