package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"uno-server/internal/config"
	"uno-server/internal/session"
	"uno-server/internal/testutil"

	"github.com/gorilla/websocket"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		Server: config.ServerConfig{TurnSeconds: 15, ResultTimeoutMS: 2000},
		Log:    config.LogConfig{Level: "info"},
	}
}

func TestHealthWithoutStore(t *testing.T) {
	srv := newGameServer(testConfig(), nil)
	defer srv.close()

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"disabled"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestOpenStoreWithoutDSN(t *testing.T) {
	st, err := openStore(context.Background(), config.ServerConfig{})
	if err != nil || st != nil {
		t.Fatalf("expected nil store, got %v, %v", st, err)
	}
}

func TestWebsocketJoinListsRoom(t *testing.T) {
	srv := newGameServer(testConfig(), nil)
	httpSrv := httptest.NewServer(srv.router)
	defer func() {
		httpSrv.Close()
		srv.close()
	}()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(httpSrv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(map[string]any{"event": "join", "data": nil}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Event != session.EventJoined || frame.Data != "r1" {
		t.Fatalf("unexpected frame %+v", frame)
	}

	resp, err := http.Get(httpSrv.URL + "/api/public/rooms")
	if err != nil {
		t.Fatalf("get rooms: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Items []session.RoomInfo `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Players != 1 {
		t.Fatalf("unexpected rooms %+v", body.Items)
	}
}

func TestResultsRecordedToStore(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	srv := newGameServer(testConfig(), st)
	if err := st.RecordResult(context.Background(), session.Result{RoomID: "r9", WinnerID: "p1", Message: "Player p1 wins!", Players: 2}); err != nil {
		t.Fatalf("record: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/results?limit=5", nil))
	srv.dir.Close()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"room_id":"r9"`) {
		t.Fatalf("result missing from %s", rec.Body.String())
	}
}
