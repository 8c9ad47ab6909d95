// Package site is the stand-in marketplace the harness drives: an echo app
// serving the admin settings screens, setup wizard, payment settings, vendor
// dashboard, storefront and REST API over the shared store.
package site

import (
	"embed"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/stolasapp/mercato/internal/sec"
	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/storage/db"
)

//go:embed static
var staticFiles embed.FS

// Roles as stored on accounts.
const (
	RoleAdministrator = "administrator"
	RoleSeller        = "seller"
	RoleCustomer      = "customer"
)

const (
	sessionCookie     = "mercato_session"
	defaultSessionTTL = 12 * time.Hour
	nonceHeader       = "X-WP-Nonce"
)

// Config controls the stand-in.
type Config struct {
	// Pro exposes the pro-tier fields, sections, modules and payment methods.
	Pro bool
	// DevMode logs every request.
	DevMode bool
	// SessionTTL bounds a login session. Zero uses 12 hours.
	SessionTTL time.Duration
}

// Site holds the handlers' dependencies.
type Site struct {
	cfg    Config
	logger *slog.Logger
	store  storage.Store
	now    func() time.Time
}

// view is the data every template receives.
type view struct {
	Title string
	User  db.User
	Nonce string
	Pro   bool
	Body  any
}

// New creates the stand-in server.
func New(cfg Config, logger *slog.Logger, store storage.Store) (*echo.Echo, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	renderer, err := loadViews()
	if err != nil {
		return nil, err
	}
	s := &Site{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "site")),
		store:  store,
		now:    time.Now,
	}

	srv := echo.New()
	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)
	srv.Renderer = renderer

	if cfg.DevMode {
		srv.Debug = true
		srv.Use(logRequests(s.logger))
	}
	srv.Use(
		middleware.Recover(),
		middleware.Gzip(),
		middleware.RequestID(),
		middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "header:" + nonceHeader + ",form:_wpnonce",
			CookiePath:     "/",
			CookieSameSite: http.SameSiteLaxMode,
			CookieHTTPOnly: true,
			Skipper: func(c echo.Context) bool {
				_, _, basic := c.Request().BasicAuth()
				return basic
			},
		}),
		s.loadSession,
	)

	s.register(srv)
	staticFS := echo.MustSubFS(staticFiles, "static")
	srv.StaticFS("/static/", staticFS)
	return srv, nil
}

func (s *Site) register(srv *echo.Echo) {
	srv.GET("/", s.home)
	srv.GET("/login", s.loginForm)
	srv.POST("/login", s.login)
	srv.POST("/logout", s.logout)
	srv.GET("/privacy-policy", s.privacyPolicy)

	admin := srv.Group("/admin", s.requireRole(RoleAdministrator))
	admin.GET("", s.adminHome)
	admin.GET("/settings", s.settingsRedirect)
	admin.GET("/settings/:section", s.settings)
	admin.GET("/modules", s.modules)
	admin.GET("/setup", s.setupWizard)
	admin.POST("/setup", s.saveSetupStep)
	admin.GET("/wc-settings/general", s.wcGeneral)
	admin.POST("/wc-settings/general", s.saveWCGeneral)
	admin.GET("/wc-settings/checkout", s.wcCheckout)
	admin.POST("/wc-settings/checkout", s.saveWCCheckout)
	admin.GET("/wc-settings/checkout/:gateway", s.wcGateway)
	admin.POST("/wc-settings/checkout/:gateway", s.saveWCGateway)
	srv.POST("/wp-admin/admin-ajax.php", s.ajax, s.requireRole(RoleAdministrator))

	vendor := srv.Group("/dashboard", s.requireRole(RoleSeller))
	vendor.GET("", s.vendorHome)
	vendor.GET("/settings/payment", s.vendorPayments)
	vendor.GET("/settings/payment/manage/:method", s.vendorPaymentForm)
	vendor.POST("/settings/payment/manage/:method", s.saveVendorPayment)
	vendor.GET("/withdraw", s.vendorWithdraw)
	vendor.POST("/withdraw", s.requestWithdraw)

	s.registerAPI(srv.Group("/wp-json", s.requireAPIAuth))
}

func (s *Site) render(c echo.Context, status int, name, title string, body any) error {
	nonce, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return c.Render(status, name, view{
		Title: title,
		User:  sec.GetAuthenticatedUser(c.Request().Context()),
		Nonce: nonce,
		Pro:   s.cfg.Pro,
		Body:  body,
	})
}

func (s *Site) renderError(c echo.Context, status int, message string) error {
	return s.render(c, status, "error", http.StatusText(status), message)
}

// activeModules returns the set of active module IDs. Modules never apply on
// the lite tier.
func (s *Site) activeModules(c echo.Context) (map[string]bool, error) {
	active := map[string]bool{}
	if !s.cfg.Pro {
		return active, nil
	}
	mods, err := s.store.ListModules(c.Request().Context())
	if err != nil {
		return nil, err
	}
	for _, mod := range mods {
		if mod.Active {
			active[mod.ID] = true
		}
	}
	return active, nil
}

func (s *Site) loadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			return next(c)
		}
		ctx := c.Request().Context()
		session, err := s.store.GetSession(ctx, cookie.Value)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return next(c)
		case err != nil:
			return err
		}
		user, err := s.store.GetUser(ctx, session.UserID)
		if err != nil {
			return next(c)
		}
		c.SetRequest(c.Request().WithContext(sec.SetAuthenticatedUser(ctx, user)))
		return next(c)
	}
}

func (s *Site) requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := sec.GetAuthenticatedUser(c.Request().Context())
			switch {
			case user.ID == 0 && c.Request().Method == http.MethodGet:
				return c.Redirect(http.StatusFound, "/login?redirect_to="+c.Request().URL.RequestURI())
			case user.ID == 0:
				return echo.ErrUnauthorized
			case user.Role != role:
				return s.renderError(c, http.StatusForbidden, "Sorry, you are not allowed to access this page.")
			}
			return next(c)
		}
	}
}

// requireAPIAuth accepts Basic Auth credentials or a browser session carrying
// the nonce header. Only administrators may use the API.
func (s *Site) requireAPIAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		user := sec.GetAuthenticatedUser(req.Context())
		if _, _, basic := req.BasicAuth(); basic {
			var err error
			if user, err = sec.Authenticate(req.Context(), req, s.store); err != nil {
				return restError(http.StatusUnauthorized, "rest_not_logged_in", err.Error())
			}
			c.SetRequest(req.WithContext(sec.SetAuthenticatedUser(req.Context(), user)))
		}
		switch {
		case user.ID == 0:
			return restError(http.StatusUnauthorized, "rest_not_logged_in", "You are not currently logged in.")
		case user.Role != RoleAdministrator:
			return restError(http.StatusForbidden, "rest_forbidden", "Sorry, you are not allowed to do that.")
		}
		return next(c)
	}
}

func homeFor(role string) string {
	switch role {
	case RoleAdministrator:
		return "/admin"
	case RoleSeller:
		return "/dashboard"
	default:
		return "/privacy-policy"
	}
}

func (s *Site) home(c echo.Context) error {
	user := sec.GetAuthenticatedUser(c.Request().Context())
	if user.ID == 0 {
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.Redirect(http.StatusFound, homeFor(user.Role))
}

type loginView struct {
	Error      string
	RedirectTo string
}

func (s *Site) loginForm(c echo.Context) error {
	return s.render(c, http.StatusOK, "login", "Log In", loginView{
		RedirectTo: safeRedirect(c.QueryParam("redirect_to")),
	})
}

func (s *Site) login(c echo.Context) error {
	ctx := c.Request().Context()
	username := strings.TrimSpace(c.FormValue("log"))
	redirect := safeRedirect(c.FormValue("redirect_to"))
	user, err := sec.CheckPassword(ctx, s.store, username, c.FormValue("pwd"))
	if err != nil {
		s.logger.InfoContext(ctx, "login rejected", slog.String("user", username))
		return s.render(c, http.StatusUnauthorized, "login", "Log In", loginView{
			Error:      "Error: The username or password you entered is incorrect.",
			RedirectTo: redirect,
		})
	}
	token := sec.NewSessionToken()
	expires := s.now().Add(s.cfg.SessionTTL)
	if err = s.store.CreateSession(ctx, db.Session{Token: token, UserID: user.ID, ExpiresAt: expires.Unix()}); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if redirect == "" {
		redirect = homeFor(user.Role)
	}
	return c.Redirect(http.StatusFound, redirect)
}

func (s *Site) logout(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		if err = s.store.DeleteSession(c.Request().Context(), cookie.Value); err != nil {
			return err
		}
	}
	c.SetCookie(&http.Cookie{Name: sessionCookie, Path: "/", MaxAge: -1})
	return c.Redirect(http.StatusFound, "/login?loggedout=true")
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// safeRedirect only allows local absolute paths.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return ""
	}
	return target
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(req.Context(), slog.LevelDebug, "request handled", attrs...)
			return err
		}
	}
}
