package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// SocketBaseName is the UNIX socket filename.
const SocketBaseName = "devdeck.sock"

const pidFileName = "devdeck.pid"

// SocketPath returns the full path to the UNIX socket.
// Order of precedence (first wins):
// 1) DEVDECK_SOCKET (absolute path to socket)
// 2) DEVDECK_RUNTIME_DIR
// 3) on linux: $XDG_RUNTIME_DIR, then /run/user/<UID>
//    elsewhere: /tmp (kept short for the sun_path limit)
func SocketPath() string {
	if explicit := os.Getenv("DEVDECK_SOCKET"); explicit != "" {
		return explicit
	}

	uid := currentUID()

	if rd := os.Getenv("DEVDECK_RUNTIME_DIR"); rd != "" {
		return filepath.Join(rd, SocketBaseName)
	}

	if runtime.GOOS == "linux" {
		if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
			return filepath.Join(v, SocketBaseName)
		}
		return filepath.Join("/run/user", uid, SocketBaseName)
	}

	return filepath.Join("/tmp", "devdeck-"+uid+".sock")
}

// EnsureRuntimeDir creates the socket's parent directory if needed.
func EnsureRuntimeDir() error {
	dir := filepath.Dir(SocketPath())
	return os.MkdirAll(dir, 0o700)
}

// PIDPath returns the full path to the PID file.
func PIDPath() string {
	return filepath.Join(filepath.Dir(SocketPath()), pidFileName)
}

// WritePID stores the provided pid into the pid file.
func WritePID(pid int) error {
	if err := EnsureRuntimeDir(); err != nil {
		return err
	}
	return os.WriteFile(PIDPath(), []byte(fmt.Sprintf("%d\n", pid)), 0o600)
}

// RemovePID removes the pid file if it exists.
func RemovePID() error {
	if err := os.Remove(PIDPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// RunningPID returns the pid stored in the pid file if any.
func RunningPID() (int, error) {
	data, err := os.ReadFile(PIDPath())
	if err != nil {
		return 0, err
	}
	value := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// IsRunning pings the daemon over the socket and reports whether it answers.
func IsRunning() bool {
	if _, err := os.Stat(SocketPath()); err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://devdeck/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := socketHTTPClient().Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// socketHTTPClient returns an HTTP client that dials the daemon socket
// regardless of the request URL's host.
func socketHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", SocketPath())
			},
		},
	}
}

func currentUID() string {
	u, err := user.Current()
	if err == nil && u != nil && u.Uid != "" {
		return u.Uid
	}
	return "0"
}
