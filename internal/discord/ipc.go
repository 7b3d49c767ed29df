package discord

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Discord IPC opcodes.
const (
	opHandshake = 0
	opFrame     = 1
	opClose     = 2
)

// maxFrameSize bounds the payload length accepted from the socket.
const maxFrameSize = 1 << 20

// Activity is the Rich Presence payload.
type Activity struct {
	Type       int         `json:"type,omitempty"`
	Name       string      `json:"name,omitempty"`
	Details    string      `json:"details,omitempty"`
	State      string      `json:"state,omitempty"`
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Assets     *Assets     `json:"assets,omitempty"`
	Buttons    []Button    `json:"buttons,omitempty"`
}

type Timestamps struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ipcClient speaks the Discord local RPC protocol over a unix socket.
type ipcClient struct {
	mu   sync.Mutex
	conn net.Conn
}

func dialIPC(appID string) (*ipcClient, error) {
	conn, err := dialSocket(socketDirs())
	if err != nil {
		return nil, err
	}
	c := &ipcClient{conn: conn}

	err = c.send(opHandshake, map[string]any{
		"v":         1,
		"client_id": appID,
	})
	if err == nil {
		_, _, err = c.receive()
	}
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("discord handshake: %w", err)
	}
	return c, nil
}

// socketDirs lists the directories Discord may place its socket in.
func socketDirs() []string {
	var dirs []string
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if dir := os.Getenv(env); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return append(dirs, os.TempDir(), "/tmp")
}

func dialSocket(dirs []string) (net.Conn, error) {
	lastErr := errors.New("no socket directories")
	for _, dir := range dirs {
		for i := 0; i <= 9; i++ {
			path := filepath.Join(dir, fmt.Sprintf("discord-ipc-%d", i))
			conn, err := net.DialTimeout("unix", path, time.Second)
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
	}
	return nil, fmt.Errorf("no discord socket found: %w", lastErr)
}

// SetActivity replaces the presence. A nil activity clears it.
func (c *ipcClient) SetActivity(a *Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.send(opFrame, map[string]any{
		"cmd": "SET_ACTIVITY",
		"args": map[string]any{
			"pid":      os.Getpid(),
			"activity": a,
		},
		"nonce": uuid.NewString(),
	})
	if err != nil {
		return err
	}

	op, data, err := c.receive()
	if err != nil {
		return err
	}
	if op == opClose {
		return errors.New("discord closed the connection")
	}
	return checkResponse(data)
}

func (c *ipcClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.send(opClose, map[string]any{})
	return c.conn.Close()
}

// send writes one frame: [opcode LE u32][length LE u32][JSON payload].
func (c *ipcClient) send(op uint32, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	frame := make([]byte, 8+len(payload))
	binary.LittleEndian.PutUint32(frame[0:4], op)
	binary.LittleEndian.PutUint32(frame[4:8], uint32(len(payload)))
	copy(frame[8:], payload)

	_, err = c.conn.Write(frame)
	return err
}

// receive reads one frame, sized by its header.
func (c *ipcClient) receive() (uint32, []byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return 0, nil, err
	}
	op := binary.LittleEndian.Uint32(header[0:4])
	length := binary.LittleEndian.Uint32(header[4:8])
	if length > maxFrameSize {
		return 0, nil, fmt.Errorf("discord frame too large: %d bytes", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return 0, nil, err
	}
	return op, payload, nil
}

func checkResponse(data []byte) error {
	var resp struct {
		Evt  string `json:"evt"`
		Data struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode discord response: %w", err)
	}
	if resp.Evt == "ERROR" {
		return fmt.Errorf("discord error %d: %s", resp.Data.Code, resp.Data.Message)
	}
	return nil
}

