package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogstashWriter ships log lines to a Logstash TCP input from a background
// goroutine. Write never blocks the caller: lines are queued and dropped when
// the queue is full or Logstash is unreachable.
type LogstashWriter struct {
	addr          string
	dialTimeout   time.Duration
	writeTimeout  time.Duration
	retryInterval time.Duration

	mu      sync.RWMutex
	closed  bool
	queue   chan []byte
	wg      sync.WaitGroup
	dropped atomic.Int64

	conn      net.Conn
	nextRetry time.Time
}

type Option func(*LogstashWriter)

func WithDialTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) {
		w.dialTimeout = d
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) {
		w.writeTimeout = d
	}
}

// WithRetryInterval sets how long to wait before redialing after a failed
// connect or write. Defaults to 5 seconds.
func WithRetryInterval(d time.Duration) Option {
	return func(w *LogstashWriter) {
		w.retryInterval = d
	}
}

// WithQueueSize bounds the number of pending lines. Defaults to 1024.
func WithQueueSize(n int) Option {
	return func(w *LogstashWriter) {
		if n > 0 {
			w.queue = make(chan []byte, n)
		}
	}
}

func NewLogstashWriter(addr string, opts ...Option) (*LogstashWriter, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logstash: empty address")
	}

	w := &LogstashWriter{
		addr:          addr,
		dialTimeout:   2 * time.Second,
		writeTimeout:  time.Second,
		retryInterval: 5 * time.Second,
		queue:         make(chan []byte, 1024),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *LogstashWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	line := make([]byte, len(p), len(p)+1)
	copy(line, p)
	if line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	select {
	case w.queue <- line:
	default:
		w.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped returns the number of lines discarded so far.
func (w *LogstashWriter) Dropped() int64 {
	return w.dropped.Load()
}

// Close flushes queued lines and closes the connection.
func (w *LogstashWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}

func (w *LogstashWriter) run() {
	defer w.wg.Done()
	for line := range w.queue {
		if !w.send(line) {
			w.dropped.Add(1)
		}
	}
}

// send is only called from run, so the connection needs no locking.
func (w *LogstashWriter) send(line []byte) bool {
	if w.conn == nil {
		if !w.nextRetry.IsZero() && time.Now().Before(w.nextRetry) {
			return false
		}
		conn, err := net.DialTimeout("tcp", w.addr, w.dialTimeout)
		if err != nil {
			w.backoff()
			return false
		}
		w.conn = conn
		w.nextRetry = time.Time{}
	}

	if w.writeTimeout > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	}
	if _, err := w.conn.Write(line); err != nil {
		_ = w.conn.Close()
		w.conn = nil
		w.backoff()
		return false
	}
	return true
}

func (w *LogstashWriter) backoff() {
	if w.retryInterval <= 0 {
		w.nextRetry = time.Time{}
		return
	}
	w.nextRetry = time.Now().Add(w.retryInterval)
}
