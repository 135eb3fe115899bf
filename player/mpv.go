package player

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reelgate/reelgate/constant"
	"github.com/reelgate/reelgate/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// MPV is an Engine backed by an mpv process controlled over JSON-IPC.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	listener   *EventListener
	status     statusHub
	seeking    atomic.Bool
	stalled    atomic.Bool
	closing    atomic.Bool
	mu         sync.Mutex // serializes socket writes
}

func NewMPV() *MPV {
	exited := make(chan struct{})
	close(exited)
	return &MPV{exited: exited}
}

// Load starts mpv paused and muted on rawURL, or replaces the current file
// when the process is already running.
func (m *MPV) Load(rawURL, title string) error {
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}
	safeTitle := sanitizeTitle(title)

	m.status.set(Loading, nil)

	if m.running() {
		if _, err := m.sendCommand("loadfile", safeURL, "replace"); err != nil {
			m.status.set(Failed, err)
			return err
		}
		_ = m.Set("force-media-title", safeTitle)
		_ = m.Set("pause", true)
		return nil
	}

	if err := m.spawn(safeURL, safeTitle); err != nil {
		m.status.set(Failed, err)
		return err
	}

	m.listener = NewEventListener(m.socketPath, m.handleEvent)
	if err := m.listener.Start(); err != nil {
		log.Warnf("mpv events unavailable: %v", err)
	}

	// file-loaded may have fired before observers were attached
	if _, err := m.GetDuration(); err == nil {
		m.status.set(Ready, nil)
	}

	return nil
}

func (m *MPV) spawn(target, title string) error {
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.App, randomBytes))
	}

	// user's mpv.conf decides video output and decoding
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--force-media-title=%s", title),
		fmt.Sprintf("--title=%s", title),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		"--loop-file=inf",
		"--pause=yes",
		"--mute=yes",
		target,
	}

	m.cmd = exec.Command("mpv", args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	m.exited = exited
	cmd := m.cmd
	go func() {
		_ = cmd.Wait()
		close(exited)
		if !m.closing.Load() {
			m.status.set(Failed, errors.New("mpv exited"))
		}
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return nil
}

func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) running() bool {
	if m.socketPath == "" {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// handleEvent maps mpv events onto engine status.
func (m *MPV) handleEvent(name string, data any) {
	switch name {
	case "start-file":
		m.seeking.Store(false)
		m.stalled.Store(false)
		m.status.set(Loading, nil)
	case "file-loaded", "playback-restart":
		if m.status.get() != Buffering {
			m.status.set(Ready, nil)
		}
	case "seeking", "paused-for-cache":
		waiting, ok := data.(bool)
		if !ok {
			return
		}
		if name == "seeking" {
			m.seeking.Store(waiting)
		} else {
			m.stalled.Store(waiting)
		}
		// buffering holds until both the seek and the cache stall are over
		if m.status.get().Loaded() {
			if m.seeking.Load() || m.stalled.Load() {
				m.status.set(Buffering, nil)
			} else {
				m.status.set(Ready, nil)
			}
		}
	case "end-file":
		event, _ := data.(map[string]any)
		if reason, _ := event["reason"].(string); reason == "error" {
			msg, _ := event["file_error"].(string)
			m.status.set(Failed, fmt.Errorf("mpv: %s", msg))
		}
	}
}

func (m *MPV) Resume() error {
	return m.Set("pause", false)
}

func (m *MPV) Pause() error {
	return m.Set("pause", true)
}

func (m *MPV) SetMuted(muted bool) error {
	return m.Set("mute", muted)
}

func (m *MPV) SetSpeed(rate float64) error {
	return m.Set("speed", rate)
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand("seek", seconds, "absolute")
	return err
}

func (m *MPV) GetTimePos() (float64, error) {
	return m.getFloatProperty("time-pos")
}

func (m *MPV) GetDuration() (float64, error) {
	return m.getFloatProperty("duration")
}

func (m *MPV) Status() Status {
	return m.status.get()
}

func (m *MPV) OnStatus(fn StatusFunc) func() {
	return m.status.subscribe(fn)
}

// FrameUpdates is false: positions are read by polling the socket.
func (m *MPV) FrameUpdates() bool {
	return false
}

// SetChapters replaces the chapter list shown on the mpv timeline.
func (m *MPV) SetChapters(chapters []map[string]any) error {
	_, err := m.sendCommand("set_property", "chapter-list", chapters)
	return err
}

// Set sets an mpv property.
func (m *MPV) Set(property string, value any) error {
	if !m.running() {
		return errors.New("mpv is not running")
	}
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// Close quits mpv, killing it if it does not exit in time.
func (m *MPV) Close() error {
	m.closing.Store(true)

	if m.listener != nil {
		m.listener.Stop()
	}

	if !m.running() {
		m.status.set(Idle, nil)
		return nil
	}

	_, _ = m.sendCommand("quit")

	select {
	case <-m.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	m.status.set(Idle, nil)

	return nil
}

func (m *MPV) getFloatProperty(name string) (float64, error) {
	if !m.running() {
		return 0, errors.New("mpv is not running")
	}

	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a backend URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// would be read as a flag
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-'")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
