package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/adapters/kv"
	"github.com/aretw0/jotter/pkg/adapters/sqlite"
	"github.com/aretw0/jotter/pkg/core"
)

// flakyRepo wraps a real repository and fails Create on demand.
type flakyRepo struct {
	core.Repository
	mu       sync.Mutex
	failNext bool
}

func (f *flakyRepo) Create(ctx context.Context, content string) (int64, error) {
	f.mu.Lock()
	fail := f.failNext
	f.failNext = false
	f.mu.Unlock()
	if fail {
		return 0, errors.Join(core.ErrWriteFailed, errors.New("disk full"))
	}
	return f.Repository.Create(ctx, content)
}

type harness struct {
	srv    *httptest.Server
	client *http.Client
	repo   *flakyRepo
	drafts *kv.Drafts
	prefs  *kv.Prefs
	server *Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	store := sqlite.NewStore(sqlite.Config{Dir: dir})
	require.NoError(t, store.Initialize(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	repo := &flakyRepo{Repository: store}
	drafts := kv.NewDrafts(time.Hour)
	prefs := kv.NewPrefs(filepath.Join(dir, ".jotter", "prefs.yaml"))
	svc := core.NewService(repo, core.WithDrafts(drafts))

	server := NewServer(svc, drafts, prefs, Config{LoginTTL: time.Hour, DraftDelay: 20 * time.Millisecond})
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		srv.Close()
		server.Close()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &harness{srv: srv, client: client, repo: repo, drafts: drafts, prefs: prefs, server: server}
}

func (h *harness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.Get(h.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (h *harness) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.PostForm(h.srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	h.get(t, "/") // issue the session cookie
	resp, _ := h.post(t, "/login", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func (h *harness) apiNotes(t *testing.T) notesResponse {
	t.Helper()
	resp, body := h.get(t, "/api/notes")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out notesResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestIndex_LoginGate(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `id="login-button"`)
	require.NotContains(t, body, `id="notes-container"`)

	h.login(t)
	_, body = h.get(t, "/")
	require.Contains(t, body, `id="notes-container"`)
	require.Contains(t, body, `id="logout-button"`)
}

func TestProtectedRoutesRedirect(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.post(t, "/notes", url.Values{"content": {"sneaky"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = h.get(t, "/api/notes")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSave_ScenarioB(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, _ := h.post(t, "/notes", url.Values{"content": {"A"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	time.Sleep(5 * time.Millisecond)
	resp, _ = h.post(t, "/notes", url.Values{"content": {"  B  "}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	require.Equal(t, []string{"B", "A"}, h.apiNotes(t).Notes)

	resp, _ = h.post(t, "/sort", url.Values{"sort": {"OldestToNewest"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	got := h.apiNotes(t)
	require.Equal(t, core.OldestToNewest, got.Sort)
	require.Equal(t, []string{"A", "B"}, got.Notes)

	_, body := h.get(t, "/")
	require.Contains(t, body, `<option value="OldestToNewest" selected>`)
}

func TestSave_EmptyInput(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.post(t, "/notes", url.Values{"content": {"keep me"}})

	for _, input := range []string{"", "   "} {
		resp, body := h.post(t, "/notes", url.Values{"content": {input}})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, body, msgEmptyInput)
		require.Contains(t, body, "<li>keep me</li>")
	}

	require.Equal(t, []string{"keep me"}, h.apiNotes(t).Notes)
}

func TestSave_WriteFailurePreservesText(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.repo.failNext = true
	resp, body := h.post(t, "/notes", url.Values{"content": {"<b>precious</b>"}})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Contains(t, body, "&lt;b&gt;precious&lt;/b&gt;</textarea>")
	require.Contains(t, body, "Could not save the note")

	require.Empty(t, h.apiNotes(t).Notes)
}

func TestSort_Validation(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, _ := h.post(t, "/sort", url.Values{"sort": {"ByColour"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	d, err := h.prefs.LoadDirective()
	require.NoError(t, err)
	require.Equal(t, core.DefaultDirective, d)
}

func TestDraft_DebouncedAndRestored(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	for _, partial := range []string{"h", "he", "hel", "hello"} {
		resp, _ := h.post(t, "/draft", url.Values{"content": {partial}})
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
	}
	h.server.FlushDrafts()
	require.Equal(t, 1, h.drafts.Len())

	_, body := h.get(t, "/")
	require.Contains(t, body, ">hello</textarea>")

	// Saving clears the draft.
	h.post(t, "/notes", url.Values{"content": {"hello"}})
	require.Zero(t, h.drafts.Len())
}

func TestLogout_ResetsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.post(t, "/sort", url.Values{"sort": {"OldestToNewest"}})
	h.post(t, "/draft", url.Values{"content": {"unsent"}})
	h.server.FlushDrafts()
	require.Equal(t, 1, h.drafts.Len())

	resp, _ := h.post(t, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	require.Zero(t, h.drafts.Len())
	d, err := h.prefs.LoadDirective()
	require.NoError(t, err)
	require.Equal(t, core.NewestToOldest, d)

	_, body := h.get(t, "/")
	require.Contains(t, body, `id="login-button"`)
}

func TestAPINotes_SortQuery(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.post(t, "/notes", url.Values{"content": {"only"}})

	resp, body := h.get(t, "/api/notes?sort=Whatever")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"sort":"Whatever"`)
	require.Contains(t, body, `"notes":["only"]`)
}

func TestGate_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := Gate{TTL: time.Hour, Now: func() time.Time { return now }}

	rec := httptest.NewRecorder()
	g.Login(rec)
	cookie := rec.Result().Cookies()[0]
	require.Equal(t, "login", cookie.Name)
	require.Equal(t, "true", cookie.Value)
	require.Equal(t, now.Add(time.Hour), cookie.Expires.UTC())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	require.True(t, g.LoggedIn(req))

	rec = httptest.NewRecorder()
	g.Logout(rec)
	require.True(t, rec.Result().Cookies()[0].MaxAge < 0)
}
