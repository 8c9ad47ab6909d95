package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/richtext"
	"github.com/stolasapp/mercato/internal/selector"
	"github.com/stolasapp/mercato/internal/testdata"
)

// StorefrontPage is the public site as a customer or guest sees it.
type StorefrontPage struct {
	page *harness.Page
}

func NewStorefrontPage(p *harness.Page) *StorefrontPage {
	return &StorefrontPage{page: p}
}

func (s *StorefrontPage) privacyPolicyHTML(ctx context.Context) ([]byte, error) {
	p := s.page
	if err := p.Goto(ctx, testdata.PrivacyPolicyPath); err != nil {
		return nil, err
	}
	if err := p.ToBeVisible(ctx, selector.Storefront.PrivacyTitle); err != nil {
		return nil, err
	}
	html, err := p.InnerHTML(ctx, selector.Storefront.PrivacyContent)
	return []byte(html), err
}

// PrivacyPolicy returns the published privacy policy converted back to
// Markdown, the format it is authored in.
func (s *StorefrontPage) PrivacyPolicy(ctx context.Context) (string, error) {
	html, err := s.privacyPolicyHTML(ctx)
	if err != nil {
		return "", err
	}
	md, err := richtext.ToMarkdown().Transform(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert privacy policy: %w", err)
	}
	return strings.TrimSpace(string(md)), nil
}

// PrivacyPolicyText returns the published privacy policy as the text a
// visitor reads.
func (s *StorefrontPage) PrivacyPolicyText(ctx context.Context) (string, error) {
	html, err := s.privacyPolicyHTML(ctx)
	if err != nil {
		return "", err
	}
	return richtext.PlainText(html)
}

// PrivacyPolicyUnpublished expects the privacy policy page to be missing.
func (s *StorefrontPage) PrivacyPolicyUnpublished(ctx context.Context) error {
	p := s.page
	if err := p.Goto(ctx, testdata.PrivacyPolicyPath); err != nil {
		return err
	}
	if err := p.ToBeVisible(ctx, selector.ErrorPage.Message); err != nil {
		return err
	}
	return p.NotToBeVisible(ctx, selector.Storefront.PrivacyContent)
}
