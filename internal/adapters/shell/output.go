package shell

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"go.trai.ch/selfie/internal/core/ports"
)

// logWriter forwards complete lines of command output to the logger at debug level.
type logWriter struct {
	logger ports.Logger
	prefix string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	w.logger.Debug(w.prefix + strings.TrimSuffix(string(line), "\r"))
}

// capture collects one output stream and fans it out to the sink and the logger.
type capture struct {
	mu  sync.Mutex
	buf bytes.Buffer
	out io.Writer
	log *logWriter
}

func newCapture(sinkWriter io.Writer, logger ports.Logger, prefix string) *capture {
	c := &capture{}
	writers := []io.Writer{&c.buf}
	if sinkWriter != nil {
		writers = append(writers, sinkWriter)
	}
	if logger != nil {
		c.log = &logWriter{logger: logger, prefix: prefix}
		writers = append(writers, c.log)
	}
	c.out = io.MultiWriter(writers...)
	return c
}

func (c *capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

// String flushes any partial log line and returns everything written so far.
func (c *capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.log != nil {
		_ = c.log.Close()
	}
	return c.buf.String()
}

func sinkWriters(sink ports.OutputSink) (stdout, stderr io.Writer) {
	if sink == nil {
		return nil, nil
	}
	return sink.Stdout(), sink.Stderr()
}
