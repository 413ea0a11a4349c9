package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

const (
	LevelError   = 3
	LevelWarning = 4
	LevelInfo    = 6
)

// Writer sends GELF messages over UDP and implements io.Writer
// so it can be used with log.SetOutput via io.MultiWriter.
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

// New creates a GELF UDP writer connected to addr (e.g. "172.17.0.1:12201").
// Every message carries service as the _service field.
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service + "-server"
	}

	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

// Write implements io.Writer. Each call sends one GELF message.
// The standard log package writes lines like "2026/02/19 18:43:52 message\n";
// the date prefix and trailing newline are stripped for short_message.
func (w *Writer) Write(p []byte) (int, error) {
	short := shortMessage(string(p))

	msg := map[string]any{
		"version":       "1.1",
		"host":          w.hostname,
		"short_message": short,
		"timestamp":     float64(time.Now().UnixNano()) / 1e9,
		"level":         levelOf(short),
		"_service":      w.service,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return len(p), nil // don't fail the log call
	}

	// Fire-and-forget
	w.conn.Write(payload)
	return len(p), nil
}

func (w *Writer) Close() error {
	return w.conn.Close()
}

func shortMessage(line string) string {
	msg := strings.TrimRight(line, "\n")
	// "2006/01/02 15:04:05 " is exactly 20 characters.
	if len(msg) > 20 && msg[4] == '/' && msg[7] == '/' && msg[10] == ' ' && msg[13] == ':' {
		return msg[20:]
	}
	return msg
}

func levelOf(short string) int {
	switch {
	case strings.Contains(short, "PANIC:") || strings.Contains(short, "Fatal"):
		return LevelError
	case strings.HasPrefix(short, "Warning:"):
		return LevelWarning
	}
	return LevelInfo
}
