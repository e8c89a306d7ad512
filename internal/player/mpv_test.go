package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"
)

// fakes the mpv side of the IPC socket with scripted reply lines
func pipedMPV(t *testing.T, serve func(req mpvRequest, w *bufio.Writer)) *MPV {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})

	go func() {
		rd := bufio.NewReader(server)
		w := bufio.NewWriter(server)
		for {
			line, err := rd.ReadBytes('\n')
			if err != nil {
				return
			}
			var req mpvRequest
			if err := json.Unmarshal(line, &req); err != nil {
				continue
			}
			serve(req, w)
			_ = w.Flush()
		}
	}()

	return &MPV{
		conn:    client,
		rd:      bufio.NewReader(client),
		timeout: time.Second,
	}
}

func TestMPVCurrentTime(t *testing.T) {
	m := pipedMPV(t, func(req mpvRequest, w *bufio.Writer) {
		// interleave an event line; the client must skip it
		w.WriteString("{\"event\":\"property-change\"}\n")
		resp, _ := json.Marshal(map[string]any{
			"error":      "success",
			"data":       42.25,
			"request_id": req.RequestID,
		})
		w.Write(append(resp, '\n'))
	})

	got, err := m.CurrentTime(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42.25 {
		t.Errorf("got %v, want 42.25", got)
	}
}

func TestMPVCommandError(t *testing.T) {
	m := pipedMPV(t, func(req mpvRequest, w *bufio.Writer) {
		resp, _ := json.Marshal(map[string]any{
			"error":      "property unavailable",
			"request_id": req.RequestID,
		})
		w.Write(append(resp, '\n'))
	})

	if _, err := m.CurrentTime(context.Background()); err == nil {
		t.Error("expected error for non-success reply")
	}
}

func TestMPVIsPaused(t *testing.T) {
	m := pipedMPV(t, func(req mpvRequest, w *bufio.Writer) {
		resp, _ := json.Marshal(map[string]any{
			"error":      "success",
			"data":       true,
			"request_id": req.RequestID,
		})
		w.Write(append(resp, '\n'))
	})

	paused, err := m.IsPaused()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !paused {
		t.Error("expected paused")
	}
}
