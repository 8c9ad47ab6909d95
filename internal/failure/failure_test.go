package failure

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "locator timeout",
			err:  &LocatorTimeout{Op: "click", Locator: "save", State: "visible", Err: context.DeadlineExceeded},
			want: KindLocatorTimeout,
		},
		{
			name: "wrapped assertion",
			err:  fmt.Errorf("set withdraw: %w", &AssertionFailure{Op: "toHaveValue", Locator: "limit", Expected: "50", Actual: "0"}),
			want: KindAssertion,
		},
		{
			name: "fixture",
			err:  &FixtureSetupFailure{Op: "activate", Endpoint: "/modules", Status: 500, Err: errors.New("boom")},
			want: KindFixtureSetup,
		},
		{
			name: "network",
			err:  &NetworkWaitTimeout{Op: "save", Pattern: "admin-ajax", Locator: "submit", Err: context.DeadlineExceeded},
			want: KindNetworkWaitTimeout,
		},
		{
			name: "plain",
			err:  errors.New("plain"),
			want: KindUnknown,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.want, KindOf(test.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	err := &AssertionFailure{Op: "toHaveValue", Locator: "admin.withdraw.limit", Expected: "50", Actual: "0"}
	assert.Equal(t, `toHaveValue: admin.withdraw.limit: expected "50", got "0"`, err.Error())

	timeout := &LocatorTimeout{Op: "click", Locator: "admin.save", State: "visible", Err: context.DeadlineExceeded}
	require.ErrorIs(t, timeout, context.DeadlineExceeded)
	assert.Contains(t, timeout.Error(), "admin.save did not become visible")

	fixture := &FixtureSetupFailure{Op: "PUT", Endpoint: "/wp-json/x", Status: 403, Err: errors.New("forbidden")}
	assert.Equal(t, "fixture PUT /wp-json/x: status 403: forbidden", fixture.Error())
}

func TestFixture(t *testing.T) {
	t.Parallel()

	require.NoError(t, Fixture("op", "/x", nil))

	base := errors.New("refused")
	err := Fixture("GET", "/x", base)
	var setup *FixtureSetupFailure
	require.ErrorAs(t, err, &setup)
	assert.Equal(t, "GET", setup.Op)
	require.ErrorIs(t, err, base)

	again := Fixture("POST", "/y", err)
	assert.Same(t, err, again)
}
