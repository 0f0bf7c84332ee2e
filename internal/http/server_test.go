// README: End-to-end HTTP tests over the gin router with in-memory services.
package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"roadie/internal/config"
	httptransport "roadie/internal/http"
	"roadie/internal/modules/account"
	"roadie/internal/modules/location"
	"roadie/internal/modules/matching"
	"roadie/internal/modules/order"
	"roadie/internal/modules/pricing"
	"roadie/internal/modules/shift"
)

func newTestHandler() http.Handler {
	gin.SetMode(gin.TestMode)
	pricingSvc := pricing.NewService(pricing.NewStore(pricing.MarketplaceRate, pricing.ShiftRate))
	matchingSvc := matching.NewService(matching.NewMemoryIndex(), config.MatchingConfig{RadiusKm: 5})
	shiftCfg := config.ShiftConfig{
		StartLat: 40.7580, StartLng: -73.9855,
		PickupRadiusM: 2000, DropoffRadiusM: 4000,
		StepsPerLeg: 3, StepInterval: time.Millisecond,
	}
	srv := httptransport.NewServer(httptransport.ServerDeps{
		Account:  account.NewService(account.NewStore(), 4),
		Order:    order.NewService(order.NewStore(), pricingSvc, matchingSvc, nil),
		Matching: matchingSvc,
		Pricing:  pricingSvc,
		Shift:    shift.NewService(shift.NewStore(), pricingSvc, location.NewSampler(7), shiftCfg, nil),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return srv.Routes()
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func login(t *testing.T, h http.Handler, email, role string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "hunter22", "role": role}
	if code, body := call(t, h, http.MethodPost, "/api/accounts/register", "", creds); code != http.StatusCreated {
		t.Fatalf("register %s: %d %v", email, code, body)
	}
	code, body := call(t, h, http.MethodPost, "/api/accounts/login", "", creds)
	if code != http.StatusOK {
		t.Fatalf("login %s: %d %v", email, code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s returned no token", email)
	}
	return token
}

var (
	timesSquare = map[string]float64{"lat": 40.7580, "lng": -73.9855}
	wallStreet  = map[string]float64{"lat": 40.7061, "lng": -74.0087}
)

func TestHealthAndMetrics(t *testing.T) {
	h := newTestHandler()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("health = %d %q", w.Code, w.Body.String())
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "roadie_") {
		t.Errorf("metrics = %d", w.Code)
	}
}

func TestAccounts(t *testing.T) {
	h := newTestHandler()
	creds := map[string]string{"email": "Alice@Example.com", "password": "pw", "role": "client"}
	if code, _ := call(t, h, http.MethodPost, "/api/accounts/register", "", creds); code != http.StatusCreated {
		t.Fatalf("register = %d", code)
	}
	if code, _ := call(t, h, http.MethodPost, "/api/accounts/register", "", creds); code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", code)
	}
	bad := map[string]string{"email": "x@example.com", "password": "pw", "role": "admin"}
	if code, _ := call(t, h, http.MethodPost, "/api/accounts/register", "", bad); code != http.StatusBadRequest {
		t.Errorf("bad role register = %d, want 400", code)
	}
	wrong := map[string]string{"email": "alice@example.com", "password": "nope", "role": "client"}
	if code, _ := call(t, h, http.MethodPost, "/api/accounts/login", "", wrong); code != http.StatusUnauthorized {
		t.Errorf("wrong password login = %d, want 401", code)
	}

	creds["email"] = "alice@example.com"
	_, body := call(t, h, http.MethodPost, "/api/accounts/login", "", creds)
	token, _ := body["token"].(string)
	if code, _ := call(t, h, http.MethodPost, "/api/accounts/logout", token, nil); code != http.StatusNoContent {
		t.Errorf("logout = %d", code)
	}
	if code, _ := call(t, h, http.MethodGet, "/api/packages", token, nil); code != http.StatusUnauthorized {
		t.Errorf("request after logout = %d, want 401", code)
	}
}

func TestQuote(t *testing.T) {
	h := newTestHandler()
	code, body := call(t, h, http.MethodPost, "/api/quotes", "", map[string]any{"pickup": timesSquare, "dropoff": timesSquare})
	if code != http.StatusOK || body["fare"] != 5.0 || body["kind"] != "marketplace" {
		t.Errorf("quote = %d %v", code, body)
	}
	code, body = call(t, h, http.MethodPost, "/api/quotes", "", map[string]any{"kind": "shift", "pickup": timesSquare, "dropoff": timesSquare})
	if code != http.StatusOK || body["fare"] != 2.5 {
		t.Errorf("shift quote = %d %v", code, body)
	}
	bad := map[string]any{"pickup": map[string]float64{"lat": 91, "lng": 0}, "dropoff": timesSquare}
	if code, _ := call(t, h, http.MethodPost, "/api/quotes", "", bad); code != http.StatusBadRequest {
		t.Errorf("out of range quote = %d, want 400", code)
	}
	if code, _ := call(t, h, http.MethodPost, "/api/quotes", "", map[string]any{"pickup": timesSquare}); code != http.StatusBadRequest {
		t.Errorf("missing dropoff = %d, want 400", code)
	}
}

func TestMarketplaceFlow(t *testing.T) {
	h := newTestHandler()
	alice := login(t, h, "alice@example.com", "client")
	bob := login(t, h, "bob@example.com", "driver")
	carol := login(t, h, "carol@example.com", "driver")

	code, pkg := call(t, h, http.MethodPost, "/api/packages", alice, map[string]any{"pickup": timesSquare, "dropoff": wallStreet})
	if code != http.StatusCreated || pkg["status"] != "pending" {
		t.Fatalf("create = %d %v", code, pkg)
	}
	id, _ := pkg["id"].(string)

	if code, _ := call(t, h, http.MethodPost, "/api/packages", bob, map[string]any{"pickup": timesSquare, "dropoff": wallStreet}); code != http.StatusForbidden {
		t.Errorf("driver creating package = %d, want 403", code)
	}

	code, body := call(t, h, http.MethodGet, "/api/drivers/packages/pending?lat=40.7590&lng=-73.9845&radius_km=2", bob, nil)
	if code != http.StatusOK {
		t.Fatalf("pending = %d %v", code, body)
	}
	list, _ := body["packages"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected one nearby package, got %v", body)
	}
	if code, _ := call(t, h, http.MethodGet, "/api/drivers/packages/pending?lat=abc&lng=1", bob, nil); code != http.StatusBadRequest {
		t.Errorf("bad lat = %d, want 400", code)
	}

	code, body = call(t, h, http.MethodPost, "/api/drivers/packages/"+id+"/accept", bob, nil)
	if code != http.StatusOK || body["driver_id"] != "bob@example.com" || body["status"] != "accepted" {
		t.Fatalf("accept = %d %v", code, body)
	}
	if code, _ := call(t, h, http.MethodPost, "/api/drivers/packages/"+id+"/accept", carol, nil); code != http.StatusConflict {
		t.Errorf("second accept = %d, want 409", code)
	}
	if code, _ := call(t, h, http.MethodPost, "/api/drivers/packages/zzzz9999/accept", carol, nil); code != http.StatusNotFound {
		t.Errorf("unknown package accept = %d, want 404", code)
	}
	if code, _ := call(t, h, http.MethodPost, "/api/drivers/packages/bad-id!/accept", carol, nil); code != http.StatusBadRequest {
		t.Errorf("malformed id accept = %d, want 400", code)
	}

	_, body = call(t, h, http.MethodGet, "/api/drivers/packages", bob, nil)
	if list, _ := body["packages"].([]any); len(list) != 1 {
		t.Errorf("bob's packages = %v", body)
	}
	_, body = call(t, h, http.MethodGet, "/api/packages", alice, nil)
	if list, _ := body["packages"].([]any); len(list) != 1 {
		t.Errorf("alice's packages = %v", body)
	}
	_, body = call(t, h, http.MethodGet, "/api/drivers/packages/pending", carol, nil)
	if list, _ := body["packages"].([]any); len(list) != 0 {
		t.Errorf("pending after accept = %v", body)
	}
}

func TestShiftFlow(t *testing.T) {
	h := newTestHandler()
	bob := login(t, h, "bob@example.com", "driver")
	alice := login(t, h, "alice@example.com", "client")

	if code, _ := call(t, h, http.MethodPost, "/api/shifts/start", alice, nil); code != http.StatusForbidden {
		t.Errorf("client starting shift = %d, want 403", code)
	}
	if code, _ := call(t, h, http.MethodGet, "/api/shifts/current", bob, nil); code != http.StatusNotFound {
		t.Errorf("current before start = %d, want 404", code)
	}
	if code, _ := call(t, h, http.MethodPost, "/api/shifts/start", bob, nil); code != http.StatusCreated {
		t.Fatalf("start = %d", code)
	}
	if code, _ := call(t, h, http.MethodPost, "/api/shifts/current/accept", bob, nil); code != http.StatusConflict {
		t.Errorf("accept without request = %d, want 409", code)
	}

	code, trip := call(t, h, http.MethodPost, "/api/shifts/current/request", bob, nil)
	if code != http.StatusCreated {
		t.Fatalf("request = %d", code)
	}
	fare, _ := trip["fare"].(float64)

	code, sess := call(t, h, http.MethodPost, "/api/shifts/current/accept", bob, nil)
	if code != http.StatusOK || sess["status"] != "in_progress" {
		t.Fatalf("accept = %d %v", code, sess)
	}
	route, _ := sess["route"].([]any)
	if len(route) != 7 {
		t.Fatalf("route len = %d, want 7", len(route))
	}

	var last map[string]any
	for i := 0; i < len(route); i++ {
		code, last = call(t, h, http.MethodPost, "/api/shifts/current/step", bob, nil)
		if code != http.StatusOK {
			t.Fatalf("step %d = %d", i, code)
		}
	}
	if last["done"] != true {
		t.Fatalf("expected trip completion, got %v", last)
	}
	_, sess = call(t, h, http.MethodGet, "/api/shifts/current", bob, nil)
	if sess["status"] != "none" || sess["trips_completed"] != 1.0 || sess["earnings"] != fare {
		t.Errorf("session after trip = %v (fare %v)", sess, fare)
	}
}

func TestShiftStream(t *testing.T) {
	h := newTestHandler()
	ts := httptest.NewServer(h)
	defer ts.Close()

	bob := login(t, h, "bob@example.com", "driver")
	call(t, h, http.MethodPost, "/api/shifts/start", bob, nil)
	call(t, h, http.MethodPost, "/api/shifts/current/request", bob, nil)
	_, sess := call(t, h, http.MethodPost, "/api/shifts/current/accept", bob, nil)
	route, _ := sess["route"].([]any)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/shifts/current/stream"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+bob)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	frames := 0
	for {
		var frame map[string]any
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			t.Fatalf("read: %v", err)
		}
		frames++
		if frame["type"] == "completed" {
			if frame["done"] != true {
				t.Errorf("completed frame without done: %v", frame)
			}
		}
	}
	if frames != len(route) {
		t.Errorf("frames = %d, want %d", frames, len(route))
	}
	_, sess = call(t, h, http.MethodGet, "/api/shifts/current", bob, nil)
	if sess["trips_completed"] != 1.0 {
		t.Errorf("trip not completed by stream: %v", sess)
	}
}

func TestShiftStream_RequiresTripInProgress(t *testing.T) {
	h := newTestHandler()
	bob := login(t, h, "bob@example.com", "driver")
	call(t, h, http.MethodPost, "/api/shifts/start", bob, nil)
	if code, _ := call(t, h, http.MethodGet, "/api/shifts/current/stream", bob, nil); code != http.StatusConflict {
		t.Errorf("stream without trip = %d, want 409", code)
	}
}
