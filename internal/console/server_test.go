package console

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brakken/rconctl/internal/config"
	"github.com/brakken/rconctl/internal/rcon"
	"github.com/brakken/rconctl/internal/testutil/testlog"
	"github.com/brakken/rconctl/internal/testutil/tlstest"
)

// newTestGateway stands up a gateway over one scripted TCP target.
func newTestGateway(t *testing.T, mutate func(*config.Gateway)) (*httptest.Server, *Manager) {
	t.Helper()
	srv, cli := net.Pipe()
	serveStream(t, srv, "secret")

	target := config.Target{
		Name: "vanilla", Host: "game.test", Port: 25575,
		Password: "secret", Network: rcon.NetworkTCP, ExecTimeout: "2s",
	}
	m := newTestManager(t, []config.Target{target}, map[string]net.Conn{"game.test:25575": cli})

	gw := config.Gateway{ListenAddr: ":0", HistoryLimit: 32}
	if mutate != nil {
		mutate(&gw)
	}
	server := NewServer(gw, m, *testlog.Start(t))
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts, m
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestGateway(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
	}
	decodeJSON(t, resp, &body)
	if body.Status != "ok" {
		t.Fatalf("status body = %q", body.Status)
	}
}

func TestBearerAuthGate(t *testing.T) {
	ts, _ := newTestGateway(t, func(gw *config.Gateway) {
		gw.APIToken = "hunter2"
	})

	resp, err := http.Get(ts.URL + "/api/targets")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/targets", nil)
	req.Header.Set("Authorization", "Bearer hunter2")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authorized get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authorized status = %d, want 200", resp.StatusCode)
	}

	// Health and metrics stay open for probes and scrapers.
	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestCommandFlowOverAPI(t *testing.T) {
	ts, _ := newTestGateway(t, nil)

	resp := postJSON(t, ts.URL+"/api/targets/vanilla/connect", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("connect status = %d", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/targets/vanilla/command", map[string]string{"command": "list"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("command status = %d", resp.StatusCode)
	}
	var cmdBody struct {
		Body string `json:"body"`
	}
	decodeJSON(t, resp, &cmdBody)
	if cmdBody.Body != "echo: list" {
		t.Fatalf("command body = %q", cmdBody.Body)
	}

	var targets struct {
		Targets []TargetStatus `json:"targets"`
	}
	resp, err := http.Get(ts.URL + "/api/targets")
	if err != nil {
		t.Fatalf("targets: %v", err)
	}
	decodeJSON(t, resp, &targets)
	if len(targets.Targets) != 1 || !targets.Targets[0].Authenticated {
		t.Fatalf("targets snapshot = %+v", targets.Targets)
	}

	var hist struct {
		History []HistoryEntry `json:"history"`
	}
	resp, err = http.Get(ts.URL + "/api/targets/vanilla/history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	decodeJSON(t, resp, &hist)
	var sawCommand bool
	for _, e := range hist.History {
		if e.Kind == "command" && e.Command == "list" {
			sawCommand = true
		}
	}
	if !sawCommand {
		t.Fatalf("history missing command entry: %+v", hist.History)
	}
}

func TestCommandEndpointErrors(t *testing.T) {
	ts, _ := newTestGateway(t, nil)

	resp := postJSON(t, ts.URL+"/api/targets/ghost/command", map[string]string{"command": "list"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown target status = %d, want 404", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/targets/vanilla/command", map[string]string{"command": "list"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("disconnected status = %d, want 409", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/targets/vanilla/command", map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing command status = %d, want 400", resp.StatusCode)
	}
}

func TestEventStreamOverWebSocket(t *testing.T) {
	ts, _ := newTestGateway(t, nil)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/targets/vanilla/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	postJSON(t, ts.URL+"/api/targets/vanilla/connect", nil).Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var ev StreamEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Target != "vanilla" || ev.Kind != "connect" {
		t.Fatalf("first stream event = %+v", ev)
	}
}

func TestRunServesTLS(t *testing.T) {
	dir := t.TempDir()
	ca := tlstest.NewAuthority(t, dir, "rcongate test ca")
	certPath, keyPath := ca.IssueServerCert(t, dir, "localhost",
		[]string{"localhost"}, []net.IP{net.ParseIP("127.0.0.1")})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	m := newTestManager(t, nil, nil)
	server := NewServer(config.Gateway{
		ListenAddr:  addr,
		TLSCertFile: certPath,
		TLSKeyFile:  keyPath,
	}, m, *testlog.Start(t))

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- server.Run(ctx) }()

	pool := x509.NewCertPool()
	caPEM, err := ca.CertPEM()
	if err != nil {
		t.Fatalf("ca pem: %v", err)
	}
	if !pool.AppendCertsFromPEM(caPEM) {
		t.Fatal("append ca cert")
	}
	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool}},
		Timeout:   time.Second,
	}

	var lastErr error
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(fmt.Sprintf("https://%s/healthz", addr))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("healthz over tls status = %d", resp.StatusCode)
			}
			lastErr = nil
			break
		}
		lastErr = err
		time.Sleep(25 * time.Millisecond)
	}
	if lastErr != nil {
		t.Fatalf("tls healthz never came up: %v", lastErr)
	}

	cancel()
	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
