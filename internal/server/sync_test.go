package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/replicated"
)

func dialSync(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sync"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSync_BroadcastsLocalCommits(t *testing.T) {
	doc := replicated.NewDoc("site-server")
	s := New(Config{Doc: doc})
	defer s.Close()

	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dialSync(t, ts)

	// Give the server a moment to register the client.
	time.Sleep(50 * time.Millisecond)

	doc.Transact(func(tx *replicated.Tx) {
		tx.ListAppend("scatter/hover:left", "bar-1")
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ops []replicated.Op
	if err := conn.ReadJSON(&ops); err != nil {
		t.Fatalf("read op batch: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != replicated.OpListInsert || ops[0].Value != "bar-1" {
		t.Errorf("received ops = %+v, want one listInsert of bar-1", ops)
	}
}

func TestSync_MergesPeerOps(t *testing.T) {
	doc := replicated.NewDoc("site-server")
	s := New(Config{Doc: doc})
	defer s.Close()

	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dialSync(t, ts)

	// A peer replica commits locally and ships its ops.
	peer := replicated.NewDoc("site-peer")
	var peerOps []replicated.Op
	peer.OnChange(func(ops []replicated.Op) { peerOps = append(peerOps, ops...) })
	peer.Transact(func(tx *replicated.Tx) {
		tx.ListAppend("scatter/pin:right", "dot-3")
		tx.MapSet("scatter/selections", "user-peer", "dot-3")
	})

	if err := conn.WriteJSON(peerOps); err != nil {
		t.Fatalf("send op batch: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if doc.ListContains("scatter/pin:right", "dot-3") {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !doc.ListContains("scatter/pin:right", "dot-3") {
		t.Fatal("peer op not merged into server document")
	}
	if v, _ := doc.MapGet("scatter/selections", "user-peer"); v != "dot-3" {
		t.Errorf("selection = %q, want dot-3", v)
	}
}
