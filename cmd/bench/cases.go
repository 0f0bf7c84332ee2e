// README: Bench checks: accounts, marketplace, concurrent accept, shift cycle, quote throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	redis *redis.Client

	// filled in as the flow progresses
	runID        string
	clientToken  string
	driverTokens []string
	packageID    string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

var (
	timesSquare = map[string]float64{"lat": 40.7580, "lng": -73.9855}
	wallStreet  = map[string]float64{"lat": 40.7061, "lng": -74.0087}
)

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
		runID: fmt.Sprintf("%d", time.Now().UnixNano()),
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
		defer r.redis.Close()
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{Name: "Env: Redis pending index", Run: checkRedis},
		{Name: "API: health", Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodGet, "/health", "", nil, http.StatusOK, nil)
		}},
		{Name: "Accounts: register + login client", Run: func(ctx context.Context, r *Runner) Result {
			tok, res := r.signup(ctx, "client", "client")
			r.clientToken = tok
			return res
		}},
		{Name: "Accounts: register + login drivers", Run: registerDrivers},
		{Name: "Accounts: duplicate register -> 409", Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/api/accounts/register", "", r.creds("client", "client"), http.StatusConflict, nil)
		}},
		{Name: "Quote: marketplace", Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/api/quotes", "", map[string]any{"pickup": timesSquare, "dropoff": wallStreet}, http.StatusOK, nil)
		}},
		{Name: "Packages: create", Run: func(ctx context.Context, r *Runner) Result {
			var pkg struct {
				ID string `json:"id"`
			}
			res := r.expect(ctx, http.MethodPost, "/api/packages", r.clientToken,
				map[string]any{"pickup": timesSquare, "dropoff": wallStreet}, http.StatusCreated, &pkg)
			r.packageID = pkg.ID
			return res
		}},
		{Name: "Packages: invalid coords -> 400", Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/api/packages", r.clientToken,
				map[string]any{"pickup": map[string]float64{"lat": 123, "lng": 456}, "dropoff": wallStreet}, http.StatusBadRequest, nil)
		}},
		{Name: "Matching: nearby pending", Run: func(ctx context.Context, r *Runner) Result {
			if len(r.driverTokens) == 0 {
				return Result{Status: "SKIP", Note: "no driver session"}
			}
			return r.expect(ctx, http.MethodGet, "/api/drivers/packages/pending?lat=40.7590&lng=-73.9845&radius_km=2", r.driverTokens[0], nil, http.StatusOK, nil)
		}},
		{Name: "Concurrency: multi accept same package", Run: concurrentAccept},
		{Name: "Shift: start/request/accept/step to completion", Run: shiftCycle},
		{Name: "Perf: quote throughput", Run: func(ctx context.Context, r *Runner) Result {
			return perfLoad(ctx, r, "/api/quotes", map[string]any{"pickup": timesSquare, "dropoff": wallStreet})
		}},
	}
}

func checkRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: "SKIP", Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	n, err := r.redis.ZCard(ctx, "roadie:packages:pending").Result()
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("pending=%d", n)}
}

func registerDrivers(ctx context.Context, r *Runner) Result {
	start := time.Now()
	for i := 0; i < r.cfg.Concurrency; i++ {
		tok, res := r.signup(ctx, fmt.Sprintf("driver%02d", i), "driver")
		if res.Status != "PASS" {
			return res
		}
		r.driverTokens = append(r.driverTokens, tok)
	}
	return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("drivers=%d", len(r.driverTokens))}
}

// concurrentAccept races every driver on one package; exactly one may win.
func concurrentAccept(ctx context.Context, r *Runner) Result {
	if r.packageID == "" || len(r.driverTokens) == 0 {
		return Result{Status: "SKIP", Note: "no package or drivers"}
	}
	var (
		wg              sync.WaitGroup
		mu              sync.Mutex
		succ, conflicts int
	)
	for _, tok := range r.driverTokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			code, _, err := r.do(ctx, http.MethodPost, "/api/drivers/packages/"+r.packageID+"/accept", tok, nil)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch code {
			case http.StatusOK:
				succ++
			case http.StatusConflict:
				conflicts++
			}
		}(tok)
	}
	wg.Wait()

	note := fmt.Sprintf("success=%d conflicts=%d", succ, conflicts)
	if succ == 1 && conflicts == len(r.driverTokens)-1 {
		return Result{Status: "PASS", Note: note}
	}
	return Result{Status: "FAIL", Note: note}
}

func shiftCycle(ctx context.Context, r *Runner) Result {
	if len(r.driverTokens) == 0 {
		return Result{Status: "SKIP", Note: "no driver session"}
	}
	tok := r.driverTokens[0]
	start := time.Now()
	for _, step := range []struct {
		path string
		want int
	}{
		{"/api/shifts/start", http.StatusCreated},
		{"/api/shifts/current/request", http.StatusCreated},
		{"/api/shifts/current/accept", http.StatusOK},
	} {
		if res := r.expect(ctx, http.MethodPost, step.path, tok, nil, step.want, nil); res.Status != "PASS" {
			res.Note = step.path + ": " + res.Note
			return res
		}
	}
	for i := 0; i < 10000; i++ {
		var frame struct {
			Done     bool    `json:"done"`
			Earnings float64 `json:"earnings"`
		}
		if res := r.expect(ctx, http.MethodPost, "/api/shifts/current/step", tok, nil, http.StatusOK, &frame); res.Status != "PASS" {
			return res
		}
		if frame.Done {
			return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("steps=%d earnings=%.2f", i+1, frame.Earnings)}
		}
	}
	return Result{Status: "FAIL", Note: "trip never completed"}
}

func perfLoad(ctx context.Context, r *Runner, path string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var (
		mu              sync.Mutex
		wg              sync.WaitGroup
		count, errCount int64
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				code, _, err := r.do(ctx, http.MethodPost, path, "", payload)
				mu.Lock()
				if err != nil || code != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func (r *Runner) creds(name, role string) map[string]string {
	return map[string]string{
		"email":    fmt.Sprintf("%s-%s@bench.local", name, r.runID),
		"password": "bench-password",
		"role":     role,
	}
}

func (r *Runner) signup(ctx context.Context, name, role string) (string, Result) {
	creds := r.creds(name, role)
	if res := r.expect(ctx, http.MethodPost, "/api/accounts/register", "", creds, http.StatusCreated, nil); res.Status != "PASS" {
		return "", res
	}
	var sess struct {
		Token string `json:"token"`
	}
	res := r.expect(ctx, http.MethodPost, "/api/accounts/login", "", creds, http.StatusOK, &sess)
	return sess.Token, res
}

// expect performs one request and passes when the status matches. out, if
// set, receives the decoded body.
func (r *Runner) expect(ctx context.Context, method, path, token string, body any, want int, out any) Result {
	start := time.Now()
	code, raw, err := r.do(ctx, method, path, token, body)
	latency := time.Since(start)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if code != want {
		return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d want=%d body=%s", code, want, bytes.TrimSpace(raw))}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return Result{Status: "FAIL", Latency: latency, Note: "decode: " + err.Error()}
		}
	}
	return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", code)}
}

func (r *Runner) do(ctx context.Context, method, path, token string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, err
}
