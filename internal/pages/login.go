package pages

import (
	"context"

	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/selector"
	"github.com/stolasapp/mercato/internal/testdata"
)

// LoginPage signs a role in and out through the shared login form.
type LoginPage struct {
	page *harness.Page
}

func NewLoginPage(p *harness.Page) *LoginPage {
	return &LoginPage{page: p}
}

func (l *LoginPage) submit(ctx context.Context, creds testdata.Credentials) error {
	p := l.page
	if err := p.Goto(ctx, testdata.LoginPath); err != nil {
		return err
	}
	if err := p.ClearAndType(ctx, selector.Login.Username, creds.Username); err != nil {
		return err
	}
	if err := p.ClearAndType(ctx, selector.Login.Password, creds.Password); err != nil {
		return err
	}
	return p.Click(ctx, selector.Login.Submit)
}

// Login signs in and waits for the admin bar to greet the user. The landing
// page differs by role and may not exist for customers, so the greeting is
// the only signal checked.
func (l *LoginPage) Login(ctx context.Context, creds testdata.Credentials) error {
	if err := l.submit(ctx, creds); err != nil {
		return err
	}
	return l.page.ToContainText(ctx, selector.AdminBar.DisplayName, creds.Username)
}

// LoginRejected submits bad credentials and expects the form to report an
// error.
func (l *LoginPage) LoginRejected(ctx context.Context, creds testdata.Credentials) error {
	if err := l.submit(ctx, creds); err != nil {
		return err
	}
	return l.page.ToBeVisible(ctx, selector.Login.Error)
}

// Logout signs out through the admin bar.
func (l *LoginPage) Logout(ctx context.Context) error {
	p := l.page
	if err := p.ClickAndWaitForResponseAndLoadState(ctx, `/login\?loggedout=true`, selector.AdminBar.Logout); err != nil {
		return err
	}
	return p.ToBeVisible(ctx, selector.Login.Form)
}
