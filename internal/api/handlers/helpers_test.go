package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hugh/rally/internal/api"
	"github.com/hugh/rally/internal/apperr"
	"github.com/hugh/rally/internal/auth"
	"github.com/hugh/rally/internal/events"
	"github.com/hugh/rally/internal/testutil"
	"github.com/stretchr/testify/require"
)

// recordingEmitter collects emitted events instead of publishing them.
type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) EmitAll(_ context.Context, evs []events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evs...)
}

func (r *recordingEmitter) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// envelope covers every JSON body the API writes.
type envelope struct {
	Message    string              `json:"message"`
	Status     int                 `json:"status"`
	Token      string              `json:"token"`
	Data       json.RawMessage     `json:"data"`
	Fields     []apperr.FieldError `json:"fields"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"per_page"`
	TotalPages int                 `json:"total_pages"`
}

type testServer struct {
	*testutil.TestSetup
	router  http.Handler
	emitter *recordingEmitter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tc := testutil.NewTestContext(t)
	emitter := &recordingEmitter{}
	authService := auth.NewService(tc.DB, testutil.TestHasher(), tc.JWTService, testutil.TestLogger())

	router := api.NewRouter(api.RouterConfig{
		DB:          tc.DB,
		Logger:      testutil.TestLogger(),
		JWTService:  tc.JWTService,
		AuthService: authService,
		Events:      emitter,
	})

	return &testServer{TestSetup: tc, router: router, emitter: emitter}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := testutil.AuthenticatedRequest(t, method, path, body, token)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		testutil.ParseJSONResponse(t, rr, &env)
	}
	return rr, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v), string(env.Data))
}
