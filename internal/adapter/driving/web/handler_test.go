package web_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/keypanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/keypanel/internal/application"
	"github.com/ericfisherdev/keypanel/internal/domain/model"
)

// --- Fakes ---

type memBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memBlobs) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[name], nil
}

func (m *memBlobs) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = data
	return nil
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

// --- Test harness ---

// browser drives the web handler like a single browser: it replays the
// cookies it was issued and echoes the CSRF token into every form.
type browser struct {
	t       *testing.T
	mux     http.Handler
	store   *application.KeyStore
	clip    *fakeClipboard
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T) *browser {
	t.Helper()

	n := 0
	store := application.NewKeyStore(
		&memBlobs{data: map[string][]byte{}},
		application.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("key-%d", n)
		}),
		application.WithLogger(slog.New(slog.DiscardHandler)),
	)
	clip := &fakeClipboard{}
	svc := application.NewKeyService(store, clip, slog.New(slog.DiscardHandler))
	h := web.NewHandler(svc, application.NewSessionRegistry(time.Minute), slog.New(slog.DiscardHandler))

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, h)

	b := &browser{t: t, mux: mux, store: store, clip: clip, cookies: map[string]*http.Cookie{}}
	rec := b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	return b
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.mux.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	if c, ok := b.cookies["csrf_token"]; ok {
		form.Set("csrf_token", c.Value)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) dashboard() string {
	b.t.Helper()
	rec := b.get("/")
	require.Equal(b.t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func (b *browser) create(label, secret string) model.APIKey {
	b.t.Helper()
	rec := b.post("/app/keys", url.Values{"label": {label}, "secret": {secret}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code)
	keys := b.store.List()
	require.NotEmpty(b.t, keys)
	return keys[0]
}

func assertRedirectHome(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

// --- Tests ---

func TestDashboard_Empty(t *testing.T) {
	b := newBrowser(t)

	assert.Contains(t, b.cookies, "csrf_token")
	assert.Contains(t, b.cookies, "keypanel_session")
	assert.True(t, b.cookies["keypanel_session"].HttpOnly)

	body := b.dashboard()
	assert.Contains(t, body, "No API keys yet. Create your first key above.")
	assert.Contains(t, body, `value="`+b.cookies["csrf_token"].Value+`"`)
}

func TestDashboard_SessionCookieIsStable(t *testing.T) {
	b := newBrowser(t)
	first := b.cookies["keypanel_session"].Value

	rec := b.get("/")
	assert.Empty(t, rec.Result().Cookies(), "known session and csrf cookies are not reissued")
	assert.Equal(t, first, b.cookies["keypanel_session"].Value)
}

func TestCreateKey(t *testing.T) {
	b := newBrowser(t)

	rec := b.post("/app/keys", url.Values{"label": {"  Production  "}, "secret": {"sk_live_abcd1234"}})
	assertRedirectHome(t, rec)

	keys := b.store.List()
	require.Len(t, keys, 1)
	assert.Equal(t, "Production", keys[0].Label)
	assert.Equal(t, "sk_live_abcd1234", keys[0].Secret)

	body := b.dashboard()
	assert.Contains(t, body, application.NoticeCreated)
	assert.Contains(t, body, model.MaskSecret("sk_live_abcd1234"))
	assert.NotContains(t, body, "sk_live_abcd1234")
	assert.NotContains(t, body, "No API keys yet")
}

func TestCreateKey_GeneratesSecretWhenBlank(t *testing.T) {
	b := newBrowser(t)

	key := b.create("Staging", "   ")
	assert.Regexp(t, `^sk_[0-9a-f]{48}$`, key.Secret)
}

func TestCreateKey_BlankLabelIsIgnored(t *testing.T) {
	b := newBrowser(t)

	rec := b.post("/app/keys", url.Values{"label": {"   "}, "secret": {"x"}})
	assertRedirectHome(t, rec)
	assert.Equal(t, 0, b.store.Len())
	assert.NotContains(t, b.dashboard(), application.NoticeCreated)
}

func TestCreateKey_NewestFirst(t *testing.T) {
	b := newBrowser(t)
	b.create("first", "")
	b.create("second", "")

	body := b.dashboard()
	assert.Less(t, strings.Index(body, ">second</td>"), strings.Index(body, ">first</td>"))
}

func TestCreateKey_EscapesLabel(t *testing.T) {
	b := newBrowser(t)
	b.create(`<script>alert(1)</script>`, "")

	body := b.dashboard()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestPost_RejectsMissingCSRFToken(t *testing.T) {
	b := newBrowser(t)

	form := url.Values{"label": {"Production"}}
	req := httptest.NewRequest(http.MethodPost, "/app/keys", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := b.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, b.store.Len())
}

func TestPost_RejectsMismatchedCSRFToken(t *testing.T) {
	b := newBrowser(t)

	form := url.Values{"label": {"Production"}, "csrf_token": {"forged"}}
	req := httptest.NewRequest(http.MethodPost, "/app/keys", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := b.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, b.store.Len())
}

func TestToggleReveal(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "sk_live_abcd1234")

	assertRedirectHome(t, b.post("/app/keys/"+key.ID+"/reveal", nil))
	body := b.dashboard()
	assert.Contains(t, body, "sk_live_abcd1234")
	assert.Contains(t, body, ">Hide</button>")

	assertRedirectHome(t, b.post("/app/keys/"+key.ID+"/reveal", nil))
	body = b.dashboard()
	assert.NotContains(t, body, "sk_live_abcd1234")
	assert.Contains(t, body, model.MaskSecret("sk_live_abcd1234"))
}

func TestToggleReveal_IsPerSession(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "sk_live_abcd1234")
	b.post("/app/keys/"+key.ID+"/reveal", nil)

	// A second browser sharing the mux but not the cookies.
	other := &browser{t: t, mux: b.mux, store: b.store, clip: b.clip, cookies: map[string]*http.Cookie{}}
	assert.NotContains(t, other.dashboard(), "sk_live_abcd1234")
}

func TestCopyKey(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "sk_live_abcd1234")

	assertRedirectHome(t, b.post("/app/keys/"+key.ID+"/copy", nil))
	assert.Equal(t, "sk_live_abcd1234", b.clip.text)
	assert.Contains(t, b.dashboard(), application.NoticeCopied)
}

func TestCopyKey_Failure(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "sk_live_abcd1234")
	b.clip.err = errors.New("no display")

	assertRedirectHome(t, b.post("/app/keys/"+key.ID+"/copy", nil))
	assert.Contains(t, b.dashboard(), application.NoticeCopyFailed)
}

func TestCopyKey_UnknownID(t *testing.T) {
	b := newBrowser(t)

	rec := b.post("/app/keys/missing/copy", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditFlow(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "sk_live_abcd1234")

	assertRedirectHome(t, b.post("/app/keys/"+key.ID+"/edit", nil))
	body := b.dashboard()
	assert.Contains(t, body, `form="edit-`+key.ID+`"`)
	assert.Contains(t, body, `value="sk_live_abcd1234"`)

	rec := b.post("/app/keys/"+key.ID+"/save", url.Values{"label": {"Renamed"}, "secret": {"sk_new_9999"}})
	assertRedirectHome(t, rec)

	got, err := b.store.Get(key.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Label)
	assert.Equal(t, "sk_new_9999", got.Secret)
	assert.Equal(t, key.CreatedAt, got.CreatedAt)

	body = b.dashboard()
	assert.Contains(t, body, application.NoticeUpdated)
	assert.NotContains(t, body, `form="edit-`+key.ID+`"`)
}

func TestEditFlow_RejectsBlankFields(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "sk_live_abcd1234")
	b.post("/app/keys/"+key.ID+"/edit", nil)

	rec := b.post("/app/keys/"+key.ID+"/save", url.Values{"label": {"Renamed"}, "secret": {"  "}})
	assertRedirectHome(t, rec)

	got, err := b.store.Get(key.ID)
	require.NoError(t, err)
	assert.Equal(t, "Production", got.Label)

	body := b.dashboard()
	assert.Contains(t, body, application.NoticeLabelAndKeyMissing)
	assert.Contains(t, body, `value="Renamed"`, "rejected draft stays in edit mode")
}

func TestEditFlow_Cancel(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "sk_live_abcd1234")
	b.post("/app/keys/"+key.ID+"/edit", nil)

	assertRedirectHome(t, b.post("/app/keys/"+key.ID+"/cancel", nil))
	assert.NotContains(t, b.dashboard(), `form="edit-`+key.ID+`"`)
}

func TestEditFlow_SaveWithoutEditIsIgnored(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "sk_live_abcd1234")

	rec := b.post("/app/keys/"+key.ID+"/save", url.Values{"label": {"Renamed"}, "secret": {"x"}})
	assertRedirectHome(t, rec)

	got, err := b.store.Get(key.ID)
	require.NoError(t, err)
	assert.Equal(t, "Production", got.Label)
}

func TestRegenerateKey_AsksForConfirmation(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "sk_live_abcd1234")

	rec := b.post("/app/keys/"+key.ID+"/regenerate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, application.RegenerateConfirmMessage)
	assert.Contains(t, body, `name="confirm" value="yes"`)
	assert.Contains(t, body, `action="/app/keys/`+key.ID+`/regenerate"`)

	got, err := b.store.Get(key.ID)
	require.NoError(t, err)
	assert.Equal(t, "sk_live_abcd1234", got.Secret)
}

func TestRegenerateKey_Confirmed(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "sk_live_abcd1234")

	rec := b.post("/app/keys/"+key.ID+"/regenerate", url.Values{"confirm": {"yes"}})
	assertRedirectHome(t, rec)

	got, err := b.store.Get(key.ID)
	require.NoError(t, err)
	assert.Regexp(t, `^sk_[0-9a-f]{48}$`, got.Secret)
	assert.Equal(t, key.Label, got.Label)
	assert.Contains(t, b.dashboard(), application.NoticeRegenerated)
}

func TestRegenerateKey_UnknownID(t *testing.T) {
	b := newBrowser(t)

	rec := b.post("/app/keys/missing/regenerate", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteKey_AsksForConfirmation(t *testing.T) {
	b := newBrowser(t)
	key := b.create("Production", "")

	rec := b.post("/app/keys/"+key.ID+"/delete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), application.DeleteConfirmMessage)
	assert.Equal(t, 1, b.store.Len())
}

func TestDeleteKey_Confirmed(t *testing.T) {
	b := newBrowser(t)
	first := b.create("first", "")
	second := b.create("second", "")

	rec := b.post("/app/keys/"+second.ID+"/delete", url.Values{"confirm": {"yes"}})
	assertRedirectHome(t, rec)

	keys := b.store.List()
	require.Len(t, keys, 1)
	assert.Equal(t, first.ID, keys[0].ID)
	assert.Contains(t, b.dashboard(), application.NoticeDeleted)
}

func TestStaticAssets(t *testing.T) {
	b := newBrowser(t)

	for _, path := range []string{"/static/app.css", "/static/app.js"} {
		rec := b.get(path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
