package replay

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/httpreplay/internal/testserver"
	"github.com/getmockd/httpreplay/pkg/client"
	"github.com/getmockd/httpreplay/pkg/metrics"
)

// countingTransport answers every request with a fixed response and counts calls.
type countingTransport struct {
	calls   atomic.Int32
	status  int
	body    string
	err     error
	lastCfg *client.Config
	before  func()
}

func newCountingTransport(body string) *countingTransport {
	return &countingTransport{status: 200, body: body}
}

func (t *countingTransport) Execute(_ context.Context, cfg *client.Config, req *client.Request) (*client.Response, error) {
	t.calls.Add(1)
	t.lastCfg = cfg
	if t.before != nil {
		t.before()
	}
	if t.err != nil {
		return nil, t.err
	}
	h := make(map[string][]string)
	h["Content-Type"] = []string{"text/plain"}
	return &client.Response{
		URL:        req.URL,
		StatusCode: t.status,
		Header:     h,
		Body:       []byte(t.body),
	}, nil
}

func (t *countingTransport) Calls() int {
	return int(t.calls.Load())
}

func newTestClient(t *testing.T, target Target, mode RecordMode, tr client.Transport) *Client {
	t.Helper()
	c, err := New(Options{Target: target, Mode: mode, Transport: tr})
	require.NoError(t, err)
	return c
}

func get(url, body string) *client.Request {
	return client.NewRequest("GET", url, []byte(body))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{Target: Dir(t.TempDir()), Mode: RecordMode("sometimes")})
	require.Error(t, err)

	c, err := New(Options{Target: Dir(t.TempDir())})
	require.NoError(t, err)
	assert.Equal(t, NewEpisodes, c.Mode())
	assert.Equal(t, client.DefaultConfig(), c.Config())
}

func TestClient_Idempotence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.json")
	tr := newCountingTransport("hello")
	c := newTestClient(t, File(path), NewEpisodes, tr)

	first, err := c.Execute(context.Background(), nil, get("http://example.com/a", "42"))
	require.NoError(t, err)
	second, err := c.Execute(context.Background(), nil, get("http://example.com/a", "42"))
	require.NoError(t, err)

	assert.Equal(t, 1, tr.Calls())
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.FileExists(t, path)
}

func TestClient_HeaderOrderSharesEntry(t *testing.T) {
	dir := t.TempDir()
	tr := newCountingTransport("ok")
	c := newTestClient(t, Dir(dir), NewEpisodes, tr)

	a := get("http://example.com/a", "")
	a.Header.Add("User-Agent", "testing")
	a.Header.Add("Content-Type", "image/png")

	b := get("http://example.com/a", "")
	b.Header.Add("Content-Type", "image/png")
	b.Header.Add("User-Agent", "testing")

	_, err := c.Execute(context.Background(), nil, a)
	require.NoError(t, err)
	_, err = c.Execute(context.Background(), nil, b)
	require.NoError(t, err)

	assert.Equal(t, 1, tr.Calls())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClient_DirectoryIsolation(t *testing.T) {
	dir := t.TempDir()
	tr := newCountingTransport("ok")
	c := newTestClient(t, Dir(dir), NewEpisodes, tr)

	reqA := get("http://example.com/a", "1")
	reqB := get("http://example.com/b", "2")

	_, err := c.Execute(context.Background(), nil, reqA)
	require.NoError(t, err)
	_, err = c.Execute(context.Background(), nil, reqB)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Calls())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	pathA, err := c.Target().PathFor(reqA)
	require.NoError(t, err)
	pathB, err := c.Target().PathFor(reqB)
	require.NoError(t, err)
	assert.NotEqual(t, pathA, pathB)

	// each is replayable on its own, in either order
	_, err = c.Execute(context.Background(), nil, reqB)
	require.NoError(t, err)
	_, err = c.Execute(context.Background(), nil, reqA)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Calls())
}

func TestClient_VersionInvalidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.json")
	tr := newCountingTransport("fresh")
	c := newTestClient(t, File(path), NewEpisodes, tr)
	req := get("http://example.com/a", "42")

	// store a matching entry, then downgrade its version
	_, err := c.Execute(context.Background(), nil, req)
	require.NoError(t, err)
	rewriteVersion(t, path, FormatVersion-1)

	resp, err := c.Execute(context.Background(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(resp.Body))
	assert.Equal(t, 2, tr.Calls())

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, StateValid, info.State)
	assert.Equal(t, FormatVersion, info.Version)
}

func TestClient_OnlyReplayMiss(t *testing.T) {
	dir := t.TempDir()
	tr := newCountingTransport("never")
	c := newTestClient(t, Dir(dir), OnlyReplay, tr)

	_, err := c.Execute(context.Background(), nil, get("http://example.com/a", "42"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPolicyViolation))

	var pv *PolicyViolationError
	require.ErrorAs(t, err, &pv)
	assert.Equal(t, ReasonMiss, pv.Reason)
	assert.Equal(t, "http://example.com/a", pv.URL)

	assert.Equal(t, 0, tr.Calls())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClient_OnlyReplayHit(t *testing.T) {
	dir := t.TempDir()
	req := get("http://example.com/a", "42")

	recorder := newTestClient(t, Dir(dir), NewEpisodes, newCountingTransport("stored"))
	_, err := recorder.Execute(context.Background(), nil, req)
	require.NoError(t, err)

	tr := newCountingTransport("never")
	replayer := newTestClient(t, Dir(dir), OnlyReplay, tr)
	resp, err := replayer.Execute(context.Background(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, "stored", string(resp.Body))
	assert.Equal(t, 0, tr.Calls())
}

func TestClient_OnlyReplayChangedRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.json")

	recorder := newTestClient(t, File(path), NewEpisodes, newCountingTransport("stored"))
	_, err := recorder.Execute(context.Background(), nil, get("http://example.com/a", "42"))
	require.NoError(t, err)

	tr := newCountingTransport("never")
	replayer := newTestClient(t, File(path), OnlyReplay, tr)
	_, err = replayer.Execute(context.Background(), nil, get("http://example.com/a", "43"))
	require.ErrorIs(t, err, ErrPolicyViolation)
	assert.Equal(t, 0, tr.Calls())
}

func TestClient_FileTargetChangedRequestOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.json")
	tr := newCountingTransport("ok")
	c := newTestClient(t, File(path), NewEpisodes, tr)

	_, err := c.Execute(context.Background(), nil, get("http://example.com/a", "1"))
	require.NoError(t, err)
	_, err = c.Execute(context.Background(), nil, get("http://example.com/a", "2"))
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Calls())

	entry, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "2", string(entry.Request.Body))
}

func TestClient_ForceRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.json")
	tr := newCountingTransport("ok")
	c := newTestClient(t, File(path), NewEpisodes, tr)
	req := get("http://example.com/a", "42")

	_, err := c.Execute(context.Background(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Calls())

	require.NoError(t, c.ForceRecordNext())
	_, err = c.Execute(context.Background(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Calls())

	_, err = c.Execute(context.Background(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Calls(), "force flag must be one-shot")
}

func TestClient_ForceRecordConsumedOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.json")
	tr := newCountingTransport("ok")
	c := newTestClient(t, File(path), NewEpisodes, tr)
	req := get("http://example.com/a", "42")

	_, err := c.Execute(context.Background(), nil, req)
	require.NoError(t, err)

	require.NoError(t, c.ForceRecordNext())
	tr.err = errors.New("connection refused")
	_, err = c.Execute(context.Background(), nil, req)
	require.Error(t, err)

	tr.err = nil
	_, err = c.Execute(context.Background(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Calls())
}

func TestClient_ForceRecordOnlyReplay(t *testing.T) {
	c := newTestClient(t, Dir(t.TempDir()), OnlyReplay, newCountingTransport("x"))

	err := c.ForceRecordNext()
	var pv *PolicyViolationError
	require.ErrorAs(t, err, &pv)
	assert.Equal(t, ReasonForceRecord, pv.Reason)

	assert.Panics(t, func() { c.MustForceRecordNext() })
}

func TestClient_TransportErrorVerbatim(t *testing.T) {
	dir := t.TempDir()
	sentinel := errors.New("dial tcp: refused")
	tr := newCountingTransport("x")
	tr.err = sentinel
	c := newTestClient(t, Dir(dir), NewEpisodes, tr)

	_, err := c.Execute(context.Background(), nil, get("http://example.com/a", ""))
	assert.Same(t, sentinel, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClient_PersistenceFailureIsFatal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cassettes")

	tr := newCountingTransport("ok")
	// a regular file appears where the target directory should be created
	tr.before = func() {
		require.NoError(t, os.WriteFile(dir, []byte("x"), 0o644))
	}
	c := newTestClient(t, Dir(dir), NewEpisodes, tr)

	resp, err := c.Execute(context.Background(), nil, get("http://example.com/a", ""))
	assert.Nil(t, resp)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, 1, tr.Calls())
}

func TestClient_CorruptEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"format_version": 2, "request": 7}`), 0o644))

	tr := newCountingTransport("ok")
	c := newTestClient(t, File(path), NewEpisodes, tr)

	_, err := c.Execute(context.Background(), nil, get("http://example.com/a", ""))
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, path, serr.Path)
	assert.Equal(t, 0, tr.Calls())
}

func TestClient_ConfigPassThrough(t *testing.T) {
	tr := newCountingTransport("ok")
	c := newTestClient(t, Dir(t.TempDir()), NewEpisodes, tr)

	_, err := c.Execute(context.Background(), nil, get("http://example.com/a", ""))
	require.NoError(t, err)
	require.NotNil(t, tr.lastCfg)
	assert.Equal(t, client.DefaultConfig(), *tr.lastCfg)

	cfg := client.DefaultConfig()
	cfg.RedirectLimit = 3
	_, err = c.Execute(context.Background(), &cfg, get("http://example.com/b", ""))
	require.NoError(t, err)
	assert.Equal(t, 3, tr.lastCfg.RedirectLimit)
}

func TestClient_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)
	tr := newCountingTransport("ok")
	c, err := New(Options{Target: Dir(t.TempDir()), Transport: tr, Metrics: m})
	require.NoError(t, err)

	req := get("http://example.com/a", "")
	_, err = c.Execute(context.Background(), nil, req)
	require.NoError(t, err)
	_, err = c.Execute(context.Background(), nil, req)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if metric.GetCounter() != nil {
				values[mf.GetName()] += metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, values["httpreplay_replay_hits_total"])
	assert.Equal(t, 1.0, values["httpreplay_replay_misses_total"])
	assert.Equal(t, 1.0, values["httpreplay_recordings_total"])
}

func TestClient_Generic(t *testing.T) {
	g, err := GenericDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, client.KindReplay, g.Kind())

	g, err = GenericFile(filepath.Join(t.TempDir(), "e.json"))
	require.NoError(t, err)
	assert.Equal(t, client.KindReplay, g.Kind())

	_, err = GenericFile("")
	require.Error(t, err)
}

func TestClient_AgainstTestServer(t *testing.T) {
	srv := testserver.New()
	defer srv.Close()

	url := srv.URL + "/y"
	want := testserver.Body(42, "GET", "/y", nil)

	for _, mode := range []RecordMode{NewEpisodes, OnlyReplay} {
		t.Run(string(mode), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "entry.json")
			before := srv.Hits()

			recorder := newTestClient(t, File(path), NewEpisodes, client.NewDirect())
			resp, err := client.Get(recorder, url).BodyString("42").Send(context.Background())
			require.NoError(t, err)
			assert.Equal(t, want, string(resp.Body))
			assert.Equal(t, before+1, srv.Hits())

			c := newTestClient(t, File(path), mode, client.NewDirect())
			resp, err = client.Get(c, url).BodyString("42").Send(context.Background())
			require.NoError(t, err)
			assert.Equal(t, want, string(resp.Body))
			assert.Equal(t, before+1, srv.Hits(), "replay must not hit the network")

			resp, err = client.Get(c, url).BodyString("43").Send(context.Background())
			if mode == OnlyReplay {
				require.ErrorIs(t, err, ErrPolicyViolation)
				assert.Equal(t, before+1, srv.Hits())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testserver.Body(43, "GET", "/y", nil), string(resp.Body))
			assert.Equal(t, before+2, srv.Hits())
		})
	}
}

func rewriteVersion(t *testing.T, path string, version int) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	doc["format_version"] = version
	data, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
