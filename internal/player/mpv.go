package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

// MPV talks to a running mpv instance over its JSON IPC socket
// (mpv --input-ipc-server=<path>). One request is in flight at a time;
// asynchronous event lines from mpv are skipped while waiting for the
// matching reply.
type MPV struct {
	mu      sync.Mutex
	conn    net.Conn
	rd      *bufio.Reader
	nextID  int64
	timeout time.Duration
}

const defaultIPCTimeout = 2 * time.Second

func ConnectMPV(socketPath string) (*MPV, error) {
	conn, err := net.DialTimeout("unix", socketPath, defaultIPCTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mpv socket %s: %w", socketPath, err)
	}
	return &MPV{
		conn:    conn,
		rd:      bufio.NewReader(conn),
		timeout: defaultIPCTimeout,
	}, nil
}

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type mpvResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
	RequestID int64           `json:"request_id"`
}

func (m *MPV) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deadline := time.Now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := m.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	m.nextID++
	req := mpvRequest{Command: args, RequestID: m.nextID}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := m.conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("mpv write failed: %w", err)
	}

	for {
		line, err := m.rd.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("mpv read failed: %w", err)
		}
		var resp mpvResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue // garbage line, keep scanning
		}
		if resp.Event != "" || resp.RequestID != req.RequestID {
			continue
		}
		if resp.Error != "success" {
			return nil, fmt.Errorf("mpv command %v failed: %s", args, resp.Error)
		}
		return resp.Data, nil
	}
}

// CurrentTime queries mpv's time-pos property.
func (m *MPV) CurrentTime(ctx context.Context) (float64, error) {
	data, err := m.command(ctx, "get_property", "time-pos")
	if err != nil {
		return 0, err
	}
	var pos float64
	if err := json.Unmarshal(data, &pos); err != nil {
		return 0, fmt.Errorf("unexpected time-pos payload %s: %w", data, err)
	}
	return pos, nil
}

func (m *MPV) Seek(seconds float64) error {
	_, err := m.command(context.Background(), "seek", seconds, "absolute")
	return err
}

func (m *MPV) Play() error {
	_, err := m.command(context.Background(), "set_property", "pause", false)
	return err
}

func (m *MPV) Pause() error {
	_, err := m.command(context.Background(), "set_property", "pause", true)
	return err
}

func (m *MPV) IsPaused() (bool, error) {
	data, err := m.command(context.Background(), "get_property", "pause")
	if err != nil {
		return false, err
	}
	var paused bool
	if err := json.Unmarshal(data, &paused); err != nil {
		return false, fmt.Errorf("unexpected pause payload %s: %w", data, err)
	}
	return paused, nil
}

// LoadFile replaces the currently playing file.
func (m *MPV) LoadFile(path string) error {
	_, err := m.command(context.Background(), "loadfile", path, "replace")
	return err
}

func (m *MPV) Close() error {
	return m.conn.Close()
}
