package scenario

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/stolasapp/mercato/internal/failure"
)

// Status is the outcome of a scenario.
type Status string

const (
	StatusPassed  Status = "PASS"
	StatusFailed  Status = "FAIL"
	StatusSkipped Status = "SKIP"
)

// Result is the outcome of one scenario.
type Result struct {
	Suite    string
	Scenario string
	Tags     []Tag
	Status   Status
	Kind     failure.Kind
	Err      error
	Reason   string
	Duration time.Duration
}

// Report collects results from concurrently running suites.
type Report struct {
	mu       sync.Mutex
	results  []Result
	teardown map[string]error
}

func newReport() *Report {
	return &Report{teardown: map[string]error{}}
}

func (r *Report) add(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *Report) addTeardown(suite string, err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardown[suite] = err
}

// Results returns every result ordered by suite then by the order the
// scenarios ran in.
func (r *Report) Results() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.results)
	slices.SortStableFunc(out, func(a, b Result) int {
		return strings.Compare(a.Suite, b.Suite)
	})
	return out
}

// TeardownErrors returns the errors raised while tearing suites down, keyed
// by suite.
func (r *Report) TeardownErrors() map[string]error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.teardown)
}

// Count returns how many scenarios ended with status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results() {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Failed reports whether any scenario or teardown failed.
func (r *Report) Failed() bool {
	return r.Count(StatusFailed) > 0 || len(r.TeardownErrors()) > 0
}

// Write prints one line per scenario followed by teardown errors and a
// summary.
func (r *Report) Write(w io.Writer) error {
	var b strings.Builder
	for _, res := range r.Results() {
		fmt.Fprintf(&b, "%s %s/%s (%s)", res.Status, res.Suite, res.Scenario, res.Duration.Round(time.Millisecond))
		switch res.Status {
		case StatusFailed:
			fmt.Fprintf(&b, " [%s] %v", res.Kind, res.Err)
		case StatusSkipped:
			fmt.Fprintf(&b, " %s", res.Reason)
		case StatusPassed:
		}
		b.WriteByte('\n')
	}
	teardown := r.TeardownErrors()
	for _, suite := range slices.Sorted(maps.Keys(teardown)) {
		err := teardown[suite]
		fmt.Fprintf(&b, "TEARDOWN %s [%s] %v\n", suite, failure.KindOf(err), err)
	}
	fmt.Fprintf(&b, "%d passed, %d failed, %d skipped\n",
		r.Count(StatusPassed), r.Count(StatusFailed), r.Count(StatusSkipped))
	_, err := io.WriteString(w, b.String())
	return err
}
