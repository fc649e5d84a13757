package telemetry

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/volley/volley-core/assess"
	"github.com/nstehr/volley/volley-core/plan"
)

func record(tick int, reason string) Record {
	return Record{
		Situation: assess.Summary{Tick: tick, Agent: 1},
		PlanID:    "plan-1",
		Posture:   plan.Save.String(),
		Step:      "making a save",
		Reason:    reason,
		Output:    plan.Output{Throttle: 1},
	}
}

func readJSONL(t *testing.T, path string) []Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()

	var out []Record
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var r Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		out = append(out, r)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestRecorderWritesCompressedLines(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 1, 14, 5, 0, 0, time.UTC)
	r := NewRecorder(dir, "agent-1")
	r.now = func() time.Time { return at }

	r.Publish(context.Background(), record(1, "fresh"))
	r.Publish(context.Background(), record(2, ""))
	require.NoError(t, r.Close())
	require.NoError(t, r.Err())

	got := readJSONL(t, filepath.Join(dir, "agent-1-2026-03-01-14.jsonl.zst"))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Situation.Tick)
	assert.Equal(t, "fresh", got[0].Reason)
	assert.Equal(t, 1.0, got[1].Output.Throttle)
}

func TestRecorderRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 1, 14, 59, 0, 0, time.UTC)
	r := NewRecorder(dir, "agent-1")
	r.now = func() time.Time { return at }

	r.Publish(context.Background(), record(1, "fresh"))
	at = at.Add(2 * time.Minute)
	r.Publish(context.Background(), record(2, ""))
	require.NoError(t, r.Close())

	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl.zst"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Len(t, readJSONL(t, filepath.Join(dir, "agent-1-2026-03-01-15.jsonl.zst")), 1)
}

func TestLoggerOnlyLogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Log: slog.New(slog.NewTextHandler(&buf, nil))}
	l.Publish(context.Background(), record(1, ""))
	assert.Empty(t, buf.String())
	l.Publish(context.Background(), record(2, "save"))
	assert.Contains(t, buf.String(), "reason=save")
}

type closingSink struct {
	got    int
	closed bool
}

func (c *closingSink) Publish(context.Context, Record) { c.got++ }
func (c *closingSink) Close() error                     { c.closed = true; return nil }

func TestMultiFansOutAndCloses(t *testing.T) {
	a, b := &closingSink{}, &closingSink{}
	m := Multi{a, Nop{}, b}
	m.Publish(context.Background(), record(1, ""))
	assert.Equal(t, 1, a.got)
	assert.Equal(t, 1, b.got)
	require.NoError(t, m.Close())
	assert.True(t, a.closed && b.closed)
}

func TestIndexStoresTransitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "volley.db")
	ix, err := OpenIndex(path)
	require.NoError(t, err)

	ctx := context.Background()
	ix.Publish(ctx, record(5, "fresh"))
	ix.Publish(ctx, record(6, ""))
	ix.Publish(ctx, record(7, "save"))
	require.NoError(t, ix.Close())
	ix.Publish(ctx, record(8, "late"))

	ix, err = OpenIndex(path)
	require.NoError(t, err)
	defer ix.Close()

	rows, err := ix.Transitions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 5, rows[0].Tick)
	assert.Equal(t, "save", rows[1].Reason)
	assert.Equal(t, "save", rows[1].Posture)
	assert.False(t, rows[1].Recorded.IsZero())
}

func TestIndexCloseDuringPublish(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "volley.db"))
	require.NoError(t, err)

	ctx := context.Background()
	var wg sync.WaitGroup
	for agent := 0; agent < 8; agent++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tick := 0; tick < 500; tick++ {
				ix.Publish(ctx, record(tick, "fresh"))
			}
		}()
	}
	require.NotPanics(t, func() { require.NoError(t, ix.Close()) })
	wg.Wait()
	assert.NoError(t, ix.Close(), "second close is a no-op")
}

func TestBroadcasterStreamsToViewer(t *testing.T) {
	b := NewBroadcaster(slog.New(slog.DiscardHandler))
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return b.Viewers() == 1 }, 2*time.Second, 10*time.Millisecond)
	b.Publish(context.Background(), record(9, "threat"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var got Record
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, 9, got.Situation.Tick)
	assert.Equal(t, "threat", got.Reason)
}
