// Package promptcontext builds the model context from exactly the alert ids a caller supplied.
package promptcontext

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/alert/domain"
)

// Sentinel context texts sent to the model when no alert data is available.
const (
	NoAlertsProvided = "No specific alerts provided. I can only answer questions about the alerts you provide."
	NoAlertsFound    = "None of the provided alert IDs were found."
)

// DefaultMaxIDs bounds how many ids a single query may reference.
const DefaultMaxIDs = 25

// maxConcurrentFetches limits parallel single-key reads against the alert store.
const maxConcurrentFetches = 8

const timestampLayout = "2006-01-02T15:04:05.000Z"

// AlertGetter is the only alert-store capability the resolver has: fetch one alert by id.
type AlertGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Alert, error)
}

// Resolved is the rendered context and the ids that were actually found, in request order.
type Resolved struct {
	Text string
	IDs  []string
}

// Resolver fetches and renders caller-listed alerts.
type Resolver struct {
	alerts AlertGetter
}

// NewResolver returns a Resolver reading through alerts.
func NewResolver(alerts AlertGetter) *Resolver {
	return &Resolver{alerts: alerts}
}

// NormalizeIDs trims ids, drops blanks and removes duplicates, preserving first-seen order.
func NormalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Resolve fetches each id independently, drops ids that do not exist and renders the rest.
// A store failure for any id fails the whole call.
func (r *Resolver) Resolve(ctx context.Context, ids []string) (*Resolved, error) {
	ids = NormalizeIDs(ids)
	if len(ids) == 0 {
		return &Resolved{Text: NoAlertsProvided, IDs: []string{}}, nil
	}

	found := make([]*domain.Alert, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, id := range ids {
		g.Go(func() error {
			a, err := r.alerts.GetByID(gctx, id)
			if err != nil {
				return fmt.Errorf("get alert %s: %w", id, err)
			}
			found[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	present := make([]*domain.Alert, 0, len(found))
	resolvedIDs := make([]string, 0, len(found))
	for i, a := range found {
		if a == nil {
			continue
		}
		present = append(present, a)
		resolvedIDs = append(resolvedIDs, ids[i])
	}
	if len(present) == 0 {
		return &Resolved{Text: NoAlertsFound, IDs: []string{}}, nil
	}
	return &Resolved{Text: Render(present), IDs: resolvedIDs}, nil
}

// Render formats alerts as numbered blocks separated by a blank line. Output is deterministic.
func Render(alerts []*domain.Alert) string {
	blocks := make([]string, 0, len(alerts))
	for i, a := range alerts {
		blocks = append(blocks, renderAlert(i+1, a))
	}
	return strings.Join(blocks, "\n\n")
}

func renderAlert(n int, a *domain.Alert) string {
	var b strings.Builder
	b.WriteString("Alert " + strconv.Itoa(n) + ":\n")
	b.WriteString("- Alert ID: " + a.ID + "\n")
	b.WriteString("- Recorded: " + formatTime(a.RecordedAt) + "\n")
	b.WriteString("- Received: " + formatTime(a.ReceivedAt) + "\n")
	b.WriteString("- Delay: " + strconv.FormatInt(a.DelayMs, 10) + "ms\n")
	b.WriteString("- Device: " + a.DeviceID + "\n")
	location := a.Location
	if location == "" {
		location = "Unknown"
	}
	b.WriteString("- Location: " + location + "\n")
	b.WriteString("- Status: " + a.Status + "\n")
	b.WriteString("- Photo: " + a.PhotoURL + "\n")
	b.WriteString("- Video: " + a.VideoURL)
	if a.Notes != "" {
		b.WriteString("\n- Notes: " + a.Notes)
	}
	return b.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
