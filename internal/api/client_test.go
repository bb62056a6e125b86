package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/salon-admin/internal/persistence"
	"github.com/example/salon-admin/internal/persistence/memory"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	RequestID     string
	Body          string
}

func newRecordingServer(t *testing.T, status int, response string) (*httptest.Server, func() []recordedRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)

	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	t.Parallel()

	server, requests := newRecordingServer(t, http.StatusOK, `[{"id":"1","name":"Cut","duration_minutes":"45","price":"30.00","active":"1"}]`)
	client := NewClient(Config{BaseURL: BaseURLForDomain(server.URL, ""), Token: "tok"},
		WithLogger(quietLogger()),
		WithRequestIDGenerator(func() string { return "req-1" }),
	)

	services, err := client.Services(context.Background())
	if err != nil {
		t.Fatalf("Services returned error: %v", err)
	}
	if len(services) != 1 || services[0].Name != "Cut" || services[0].Price != "30.00" || !services[0].IsActive() {
		t.Fatalf("unexpected services: %+v", services)
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got))
	}
	if got[0].Path != DefaultPathPrefix+"/services" {
		t.Fatalf("unexpected path %q", got[0].Path)
	}
	if got[0].Authorization != "Bearer tok" {
		t.Fatalf("expected bearer header, got %q", got[0].Authorization)
	}
	if got[0].ContentType != "application/json" {
		t.Fatalf("unexpected content type %q", got[0].ContentType)
	}
	if got[0].RequestID != "req-1" {
		t.Fatalf("unexpected request id %q", got[0].RequestID)
	}
}

func TestClient_LoginOmitsBearer(t *testing.T) {
	t.Parallel()

	server, requests := newRecordingServer(t, http.StatusOK, `{"token":"new-token","staff":{"id":7,"name":"Ana","email":"ana@example.com","phone":"","permissions":{"can_view_customers":"1"}},"license":{"valid":true,"type":"pro"}}`)
	session := NewSession("", WithLogger(quietLogger()))
	session.SetBaseURL(server.URL)
	session.SetToken("stale")

	resp, err := session.Login(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.Staff.ID != "7" {
		t.Fatalf("expected numeric id to decode as string, got %q", resp.Staff.ID)
	}
	if p := resp.Staff.Permissions; p == nil || p.CanViewCustomers == nil || !bool(*p.CanViewCustomers) {
		t.Fatalf("expected can_view_customers to decode as true: %+v", p)
	}
	if session.Config().Token != "new-token" {
		t.Fatalf("expected session token to be replaced, got %q", session.Config().Token)
	}

	got := requests()
	if got[0].Authorization != "" {
		t.Fatalf("login must not carry a bearer token, got %q", got[0].Authorization)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(got[0].Body), &body); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	if body["email"] != "ana@example.com" || body["password"] != "secret" {
		t.Fatalf("unexpected login body: %v", body)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
	}{
		{name: "unauthorized status", status: http.StatusUnauthorized, body: `{"message":"Nope"}`, wantKind: KindUnauthorized, wantMsg: "Nope"},
		{name: "expired token message", status: http.StatusForbidden, body: `{"message":"Invalid or expired token"}`, wantKind: KindUnauthorized, wantMsg: "Invalid or expired token"},
		{name: "forbidden", status: http.StatusForbidden, body: `{"message":"Keine Berechtigung"}`, wantKind: KindForbidden, wantMsg: "Keine Berechtigung"},
		{name: "not found without body", status: http.StatusNotFound, body: ``, wantKind: KindNotFound, wantMsg: "HTTP 404"},
		{name: "validation", status: http.StatusBadRequest, body: `{"message":"Missing field"}`, wantKind: KindValidation, wantMsg: "Missing field"},
		{name: "server html", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantKind: KindServer, wantMsg: "HTTP 502"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			server, _ := newRecordingServer(t, tc.status, tc.body)
			client := NewClient(Config{BaseURL: BaseURLForDomain(server.URL, ""), Token: "tok"}, WithLogger(quietLogger()))

			_, err := client.Customers(context.Background())
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if apiErr.Kind != tc.wantKind {
				t.Fatalf("expected kind %s, got %s", tc.wantKind, apiErr.Kind)
			}
			if err.Error() != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, err.Error())
			}
			if apiErr.Status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, apiErr.Status)
			}
		})
	}
}

func TestClient_TransportAndDecodeErrors(t *testing.T) {
	t.Parallel()

	t.Run("transport", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		base := BaseURLForDomain(server.URL, "")
		server.Close()

		client := NewClient(Config{BaseURL: base}, WithLogger(quietLogger()), WithTimeout(time.Second))
		err := client.CheckConnection(context.Background())
		if KindOf(err) != KindTransport {
			t.Fatalf("expected transport error, got %v", err)
		}
	})

	t.Run("decode", func(t *testing.T) {
		t.Parallel()
		server, _ := newRecordingServer(t, http.StatusOK, `{"not":"a list"}`)
		client := NewClient(Config{BaseURL: BaseURLForDomain(server.URL, "")}, WithLogger(quietLogger()))
		_, err := client.Staff(context.Background())
		if KindOf(err) != KindDecode {
			t.Fatalf("expected decode error, got %v", err)
		}
	})

	t.Run("missing base url", func(t *testing.T) {
		t.Parallel()
		client := NewClient(Config{}, WithLogger(quietLogger()))
		if _, err := client.Services(context.Background()); KindOf(err) != KindTransport {
			t.Fatalf("expected transport error without base URL, got %v", err)
		}
	})
}

func TestClient_AppointmentQuery(t *testing.T) {
	t.Parallel()

	server, requests := newRecordingServer(t, http.StatusOK, `[]`)
	client := NewClient(Config{BaseURL: BaseURLForDomain(server.URL, ""), Token: "tok"}, WithLogger(quietLogger()))

	_, err := client.Appointments(context.Background(), AppointmentFilter{
		StaffID: "3",
		Start:   "2024-05-01 00:00:00",
		End:     "2024-05-01 23:59:59",
	})
	if err != nil {
		t.Fatalf("Appointments returned error: %v", err)
	}

	got := requests()[0]
	want := "end=2024-05-01+23%3A59%3A59&staff_id=3&start=2024-05-01+00%3A00%3A00"
	if got.Query != want {
		t.Fatalf("unexpected query %q", got.Query)
	}
}

func TestClient_UpdateAppointmentSendsOnlySetFields(t *testing.T) {
	t.Parallel()

	server, requests := newRecordingServer(t, http.StatusOK, `{"message":"ok"}`)
	client := NewClient(Config{BaseURL: BaseURLForDomain(server.URL, ""), Token: "tok"}, WithLogger(quietLogger()))

	status := "confirmed"
	if _, err := client.UpdateAppointment(context.Background(), "12", UpdateAppointmentInput{Status: &status}); err != nil {
		t.Fatalf("UpdateAppointment returned error: %v", err)
	}
	got := requests()[0]
	if got.Method != http.MethodPut || got.Path != DefaultPathPrefix+"/appointments/12" {
		t.Fatalf("unexpected request %s %s", got.Method, got.Path)
	}
	if got.Body != `{"status":"confirmed"}` {
		t.Fatalf("unexpected body %s", got.Body)
	}
}

func TestClient_WithTokenIsIndependent(t *testing.T) {
	t.Parallel()

	original := NewClient(Config{BaseURL: "https://a.example/x", Token: "one"})
	changed := original.WithToken("two").WithBaseURL("https://b.example/x")

	if original.Config().Token != "one" || original.Config().BaseURL != "https://a.example/x" {
		t.Fatalf("original client mutated: %+v", original.Config())
	}
	if changed.Config().Token != "two" || changed.Config().BaseURL != "https://b.example/x" {
		t.Fatalf("unexpected derived config: %+v", changed.Config())
	}
}

func TestSession_Initialize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("requires domain and token", func(t *testing.T) {
		t.Parallel()
		store := memory.New()
		_ = store.Set(ctx, persistence.KeyDomain, "https://salon.example")

		session := NewSession("")
		if err := session.Initialize(ctx, store); err != nil {
			t.Fatalf("Initialize returned error: %v", err)
		}
		if session.Config() != (Config{}) {
			t.Fatalf("expected empty config without token, got %+v", session.Config())
		}
	})

	t.Run("applies stored values", func(t *testing.T) {
		t.Parallel()
		store := memory.New()
		_ = store.Set(ctx, persistence.KeyDomain, "https://salon.example/")
		_ = store.Set(ctx, persistence.KeyToken, "tok")

		session := NewSession("")
		if err := session.Initialize(ctx, store); err != nil {
			t.Fatalf("Initialize returned error: %v", err)
		}
		want := Config{BaseURL: "https://salon.example" + DefaultPathPrefix, Token: "tok"}
		if session.Config() != want {
			t.Fatalf("expected %+v, got %+v", want, session.Config())
		}
	})
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	got, err := TokenExpiry(token)
	if err != nil {
		t.Fatalf("TokenExpiry returned error: %v", err)
	}
	if !got.Equal(exp) {
		t.Fatalf("expected %s, got %s", exp, got)
	}

	if _, err := TokenExpiry("opaque-token"); !errors.Is(err, ErrOpaqueToken) {
		t.Fatalf("expected ErrOpaqueToken, got %v", err)
	}
}

func TestFlexString(t *testing.T) {
	t.Parallel()

	var resp CreatedResponse
	if err := json.Unmarshal([]byte(`{"id":42,"message":"created"}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != "42" {
		t.Fatalf("expected id 42, got %q", resp.ID)
	}

	var svc Service
	if err := json.Unmarshal([]byte(`{"id":"5","price":null}`), &svc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if svc.Price != "" {
		t.Fatalf("expected empty price for null, got %q", svc.Price)
	}
	if _, err := FlexString("12.50").Float(); err != nil {
		t.Fatalf("expected price to parse: %v", err)
	}
}
