package agent

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/hupe1980/agenthub/core"
)

// SystemAgent answers questions about the host process: current time, Go
// runtime version, platform and goroutine count. Everything it reports is
// computed locally, so responses are instant and side-effect free.
type SystemAgent struct {
	BaseAgent
	now func() time.Time
}

// NewSystemAgent constructs a SystemAgent with the given bus id.
func NewSystemAgent(id string) *SystemAgent {
	return &SystemAgent{
		BaseAgent: NewBaseAgent(id, "System", "Reports process and runtime information.", "system"),
		now:       time.Now,
	}
}

// Process implements core.Agent. The query is matched against a small set of
// keywords; anything unrecognized gets the full report.
func (a *SystemAgent) Process(_ context.Context, query string, _ map[string]any) (core.Response, error) {
	q := strings.ToLower(query)

	var content string
	switch {
	case strings.Contains(q, "time") || strings.Contains(q, "date"):
		content = a.now().UTC().Format(time.RFC1123)
	case strings.Contains(q, "version"):
		content = runtime.Version()
	case strings.Contains(q, "goroutine"):
		content = fmt.Sprintf("%d goroutines", runtime.NumGoroutine())
	default:
		content = fmt.Sprintf("time=%s go=%s platform=%s/%s goroutines=%d",
			a.now().UTC().Format(time.RFC3339), runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumGoroutine())
	}

	return core.Response{
		Content: content,
		Metadata: map[string]any{
			"os":   runtime.GOOS,
			"arch": runtime.GOARCH,
		},
	}, nil
}
