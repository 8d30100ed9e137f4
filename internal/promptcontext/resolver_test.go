package promptcontext

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/alert/domain"
)

type fakeAlerts struct {
	mu    sync.Mutex
	byID  map[string]*domain.Alert
	calls []string
	err   error
}

func (f *fakeAlerts) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func sampleAlert(id string) *domain.Alert {
	rec := time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.UTC)
	return &domain.Alert{
		ID:         id,
		RecordedAt: rec,
		SentAt:     rec.Add(100 * time.Millisecond),
		ReceivedAt: rec.Add(250 * time.Millisecond),
		DelayMs:    250,
		DeviceID:   "cam-12",
		Location:   "Gate 3",
		Status:     "new",
		PhotoURL:   "https://cdn.example/p/" + id + ".jpg",
		VideoURL:   "https://cdn.example/v/" + id + ".mp4",
	}
}

func TestResolve_NoIDs(t *testing.T) {
	store := &fakeAlerts{}
	r := NewResolver(store)

	for _, ids := range [][]string{nil, {}, {"", "   "}} {
		res, err := r.Resolve(context.Background(), ids)
		require.NoError(t, err)
		assert.Equal(t, NoAlertsProvided, res.Text)
		assert.Empty(t, res.IDs)
	}
	assert.Empty(t, store.calls, "no store reads for an empty id list")
}

func TestResolve_NoneFound(t *testing.T) {
	store := &fakeAlerts{byID: map[string]*domain.Alert{}}
	res, err := NewResolver(store).Resolve(context.Background(), []string{"a1", "a2"})
	require.NoError(t, err)
	assert.Equal(t, NoAlertsFound, res.Text)
	assert.Empty(t, res.IDs)
}

func TestResolve_OnlyRequestedIDsAreRead(t *testing.T) {
	store := &fakeAlerts{byID: map[string]*domain.Alert{
		"a1": sampleAlert("a1"),
		"a2": sampleAlert("a2"),
		"a3": sampleAlert("a3"),
	}}
	res, err := NewResolver(store).Resolve(context.Background(), []string{"a2", "missing", "a1"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a2", "missing", "a1"}, store.calls)
	assert.Equal(t, []string{"a2", "a1"}, res.IDs, "found ids keep request order")
	assert.Contains(t, res.Text, "Alert 1:\n- Alert ID: a2\n")
	assert.Contains(t, res.Text, "Alert 2:\n- Alert ID: a1\n")
	assert.NotContains(t, res.Text, "a3")
	assert.NotContains(t, res.Text, "missing")
}

func TestResolve_DeduplicatesIDs(t *testing.T) {
	store := &fakeAlerts{byID: map[string]*domain.Alert{"a1": sampleAlert("a1")}}
	res, err := NewResolver(store).Resolve(context.Background(), []string{"a1", " a1 ", "a1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, res.IDs)
	assert.Len(t, store.calls, 1)
}

func TestResolve_StoreFailure(t *testing.T) {
	store := &fakeAlerts{err: errors.New("connection reset")}
	_, err := NewResolver(store).Resolve(context.Background(), []string{"a1"})
	require.Error(t, err)
}

func TestRender_Format(t *testing.T) {
	a := sampleAlert("a1")
	a.Notes = "Suspect fled north"
	b := sampleAlert("a2")
	b.Location = ""

	want := "Alert 1:\n" +
		"- Alert ID: a1\n" +
		"- Recorded: 2025-03-04T05:06:07.890Z\n" +
		"- Received: 2025-03-04T05:06:08.140Z\n" +
		"- Delay: 250ms\n" +
		"- Device: cam-12\n" +
		"- Location: Gate 3\n" +
		"- Status: new\n" +
		"- Photo: https://cdn.example/p/a1.jpg\n" +
		"- Video: https://cdn.example/v/a1.mp4\n" +
		"- Notes: Suspect fled north\n" +
		"\n" +
		"Alert 2:\n" +
		"- Alert ID: a2\n" +
		"- Recorded: 2025-03-04T05:06:07.890Z\n" +
		"- Received: 2025-03-04T05:06:08.140Z\n" +
		"- Delay: 250ms\n" +
		"- Device: cam-12\n" +
		"- Location: Unknown\n" +
		"- Status: new\n" +
		"- Photo: https://cdn.example/p/a2.jpg\n" +
		"- Video: https://cdn.example/v/a2.mp4"

	assert.Equal(t, want, Render([]*domain.Alert{a, b}))
}

func TestRender_Deterministic(t *testing.T) {
	alerts := []*domain.Alert{sampleAlert("a1"), sampleAlert("a2")}
	first := Render(alerts)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Render(alerts))
	}
}

func TestRender_NormalizesTimezone(t *testing.T) {
	a := sampleAlert("a1")
	a.RecordedAt = a.RecordedAt.In(time.FixedZone("IST", 5*3600+1800))
	assert.Contains(t, Render([]*domain.Alert{a}), "- Recorded: 2025-03-04T05:06:07.890Z\n")
}
