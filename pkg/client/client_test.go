package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

type recorded struct {
	mu       sync.Mutex
	observed []string
}

func (r *recorded) ObserveRequest(method string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed = append(r.observed, method+" "+http.StatusText(status))
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"bad credentials"}`))
			return
		}
		token := signedToken(t, jwt.MapClaims{"sub": "u-42", "rol": []any{"ADMIN", "AUDITOR"}})
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": token})
	})
	r.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"authorization": req.Header.Get("Authorization"),
			"request_id":    req.Header.Get(RequestIDHeader),
		})
	})
	r.Get("/divisiones", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 7, "nombre": "Norte"}, {"id": "8", "name": "Sur"}]`))
	})
	r.Get("/rats", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"items": [{"id": 1}], "pages": 3, "total": 21}`))
	})
	r.Put("/rats/{id}", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		body["id"] = chi.URLParam(req, "id")
		_ = json.NewEncoder(w).Encode(body)
	})
	r.Delete("/rats/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoginInitialisesSession(t *testing.T) {
	srv := newBackend(t)
	c := New(srv.URL + "/")

	require.NoError(t, c.Login(context.Background(), "ana@example.org", "secret"))

	s := c.Session()
	assert.True(t, s.Authenticated())
	assert.Equal(t, "u-42", s.UserID())
	assert.Equal(t, []string{"ADMIN", "AUDITOR"}, s.Roles())
	assert.True(t, s.IsAdmin())
	assert.True(t, s.IsAuditor())

	var who map[string]string
	require.NoError(t, c.Get(context.Background(), "whoami", &who))
	assert.Equal(t, "Bearer "+s.Token(), who["authorization"])
	assert.NotEmpty(t, who["request_id"])

	c.Logout()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Roles())
}

func TestClient_UnauthorizedIsTyped(t *testing.T) {
	srv := newBackend(t)
	c := New(srv.URL)

	err := c.Login(context.Background(), "ana@example.org", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "bad credentials")
}

func TestClient_NonSuccessBecomesAPIError(t *testing.T) {
	srv := newBackend(t)
	rec := &recorded{}
	c := New(srv.URL, WithRecorder(rec))

	err := c.Get(context.Background(), "/broken", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, IsNotFound(err))
	assert.Equal(t, []string{"GET Internal Server Error"}, rec.observed)
}

func TestClient_WritesAndEmptyBodies(t *testing.T) {
	srv := newBackend(t)
	c := New(srv.URL)

	var out map[string]any
	require.NoError(t, c.Put(context.Background(), "/rats/5", map[string]any{"nombre": "RAT"}, &out))
	assert.Equal(t, map[string]any{"nombre": "RAT", "id": "5"}, out)

	var deleted map[string]any
	require.NoError(t, c.Delete(context.Background(), "/rats/5", &deleted))
	assert.Nil(t, deleted)
}

func TestClient_OptionsNormalizeIDs(t *testing.T) {
	srv := newBackend(t)
	c := New(srv.URL)

	opts, err := c.Options(context.Background(), "/divisiones")
	require.NoError(t, err)
	assert.Equal(t, []schema.Option{{ID: "7", Name: "Norte"}, {ID: "8", Name: "Sur"}}, opts)
}

func TestClient_ListDecodesPages(t *testing.T) {
	srv := newBackend(t)
	c := New(srv.URL)

	page, err := c.List(context.Background(), "/rats?page=1&size=10")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 21, page.Total)
	require.Len(t, page.Items, 1)

	bare, err := DecodePage([]byte(`[{"id": 1}, {"id": 2}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, bare.Pages)
	assert.Len(t, bare.Items, 2)
}

func TestSession_SingleRoleAndUserIDClaim(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Init(signedToken(t, jwt.MapClaims{"user_id": float64(12), "sub": "ignored", "rol": "AUDITOR"})))

	assert.Equal(t, "12", s.UserID())
	assert.Equal(t, []string{"AUDITOR"}, s.Roles())
	assert.False(t, s.IsAdmin())

	assert.Error(t, s.Init("not-a-token"))
}
