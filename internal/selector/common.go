package selector

import "github.com/stolasapp/mercato/internal/locator"

// Login is the shared login form.
var Login = struct {
	Form     locator.Locator
	Username locator.Locator
	Password locator.Locator
	Submit   locator.Locator
	Error    locator.Locator
}{
	Form:     locator.NewCSS(locator.Guest, "login form", "form#loginform"),
	Username: locator.NewCSS(locator.Guest, "login username", "#user_login"),
	Password: locator.NewCSS(locator.Guest, "login password", "#user_pass"),
	Submit:   locator.NewCSS(locator.Guest, "login submit", "#wp-submit"),
	Error:    locator.NewCSS(locator.Guest, "login error", "#login_error"),
}

// AdminBar is the toolbar shown to any logged-in role.
var AdminBar = struct {
	Bar         locator.Locator
	DisplayName locator.Locator
	Logout      locator.Locator
}{
	Bar:         locator.NewCSS(locator.Customer, "admin bar", "#wpadminbar"),
	DisplayName: locator.NewCSS(locator.Customer, "account name", "#wp-admin-bar-my-account .display-name"),
	Logout:      locator.NewCSS(locator.Customer, "logout", "#wp-admin-bar-logout button"),
}

// ErrorPage is the generic die page.
var ErrorPage = struct {
	Message locator.Locator
}{
	Message: locator.NewCSS(locator.Guest, "error message", ".wp-die-message p"),
}

// Storefront is the public site.
var Storefront = struct {
	PrivacyTitle   locator.Locator
	PrivacyContent locator.Locator
}{
	PrivacyTitle:   locator.NewCSS(locator.Customer, "privacy title", "article.privacy-policy h1.entry-title"),
	PrivacyContent: locator.NewCSS(locator.Customer, "privacy content", ".privacy-policy-content"),
}
