package harness

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/stolasapp/mercato/internal/locator"
)

// Capabilities describe what the target site offers: its product tier and
// the modules currently active. Page objects consult them before touching a
// gated locator.
type Capabilities struct {
	Tier    locator.Tier
	Modules map[string]bool
}

// NewCapabilities returns capabilities for tier with modules active.
func NewCapabilities(tier locator.Tier, modules ...string) Capabilities {
	caps := Capabilities{Tier: tier, Modules: map[string]bool{}}
	if tier != locator.Pro {
		return caps
	}
	for _, id := range modules {
		caps.Modules[id] = true
	}
	return caps
}

// Pro reports whether pro-tier elements exist.
func (c Capabilities) Pro() bool { return c.Tier == locator.Pro }

// Active reports whether module is active. Modules never apply on lite.
func (c Capabilities) Active(module string) bool {
	return c.Pro() && c.Modules[module]
}

// Allows reports whether loc can exist on the site.
func (c Capabilities) Allows(loc locator.Locator) bool {
	if loc.Tier == locator.Pro && !c.Pro() {
		return false
	}
	return loc.Module == "" || c.Active(loc.Module)
}

// ActiveModules returns the sorted active module IDs.
func (c Capabilities) ActiveModules() []string {
	if !c.Pro() {
		return nil
	}
	var out []string
	for id, on := range c.Modules {
		if on {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// WithModule returns a copy with module marked active or inactive.
func (c Capabilities) WithModule(module string, active bool) Capabilities {
	c.Modules = maps.Clone(c.Modules)
	if c.Modules == nil {
		c.Modules = map[string]bool{}
	}
	c.Modules[module] = active
	return c
}

func (c Capabilities) String() string {
	return fmt.Sprintf("%s%v", c.Tier, c.ActiveModules())
}

// ModuleLister reports the active modules of the site.
type ModuleLister interface {
	ActiveModules(ctx context.Context) ([]string, error)
}

// Refresh replaces the module set with what the site reports. Lite sites
// have no modules and are not queried.
func (c *Capabilities) Refresh(ctx context.Context, lister ModuleLister) error {
	if !c.Pro() {
		c.Modules = map[string]bool{}
		return nil
	}
	active, err := lister.ActiveModules(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh capabilities: %w", err)
	}
	*c = NewCapabilities(c.Tier, active...)
	return nil
}
