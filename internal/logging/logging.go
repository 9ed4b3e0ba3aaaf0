// Package logging provides the run logger: console output through zerolog,
// plus an in-memory transcript of every line that can be appended to a
// dated log file when the run ends.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	consoleTimeFormat = "15:04:05"
	separator         = "----------------------------------"
)

// Config controls where log lines go.
type Config struct {
	// Debug shows debug lines on the console. The transcript always keeps them.
	Debug bool
	// Console defaults to os.Stdout.
	Console io.Writer
	// FileOutput enables WriteFile; Directory must then be set.
	FileOutput bool
	Directory  string
	// FilePrefix names the log file, "<prefix> YYYY-MM-DD.txt". Defaults to "slackbot".
	FilePrefix string
}

// Field mutates a zerolog event.
type Field func(e *zerolog.Event)

func String(k, v string) Field        { return func(e *zerolog.Event) { e.Str(k, v) } }
func Strs(k string, v []string) Field { return func(e *zerolog.Event) { e.Strs(k, v) } }
func Int(k string, v int) Field       { return func(e *zerolog.Event) { e.Int(k, v) } }
func Time(k string, v time.Time) Field {
	return func(e *zerolog.Event) { e.Time(k, v) }
}
func Any(k string, v any) Field { return func(e *zerolog.Event) { e.Interface(k, v) } }
func Err(err error) Field {
	return func(e *zerolog.Event) {
		if err != nil {
			e.Err(err)
		}
	}
}

// Logger is safe for concurrent use. A nil *Logger discards everything.
type Logger struct {
	zl         zerolog.Logger
	cfg        Config
	transcript *syncBuffer
	now        func() time.Time
	began      time.Time
}

// New creates a logger and opens the transcript with a begin-time header.
func New(cfg Config) *Logger {
	return newLogger(cfg, time.Now)
}

func newLogger(cfg Config, now func() time.Time) *Logger {
	zerolog.ErrorFieldName = "err"

	if cfg.Console == nil {
		cfg.Console = os.Stdout
	}
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = "slackbot"
	}

	consoleLevel := zerolog.InfoLevel
	if cfg.Debug {
		consoleLevel = zerolog.DebugLevel
	}

	l := &Logger{
		cfg:        cfg,
		transcript: &syncBuffer{},
		now:        now,
	}

	console := zerolog.ConsoleWriter{
		Out:           cfg.Console,
		TimeFormat:    consoleTimeFormat,
		FormatMessage: consoleMessage,
	}
	file := zerolog.ConsoleWriter{
		Out:        l.transcript,
		NoColor:    true,
		TimeFormat: consoleTimeFormat,
	}

	mw := zerolog.MultiLevelWriter(minLevelWriter{w: console, min: consoleLevel}, file)
	l.zl = zerolog.New(mw).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	l.begin()
	return l
}

// Nop returns a logger that writes nowhere.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), transcript: &syncBuffer{}, now: time.Now}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(zerolog.DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(zerolog.InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(zerolog.WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(zerolog.ErrorLevel, msg, fields) }

// Success logs at info level tagged result=success.
func (l *Logger) Success(msg string, fields ...Field) {
	l.log(zerolog.InfoLevel, msg, append([]Field{String("result", "success")}, fields...))
}

func (l *Logger) log(level zerolog.Level, msg string, fields []Field) {
	if l == nil {
		return
	}
	e := l.zl.WithLevel(level)
	if e == nil {
		return
	}
	for _, f := range fields {
		if f != nil {
			f(e)
		}
	}
	e.Msg(msg)
}

// Transcript returns everything logged since the last WriteFile.
func (l *Logger) Transcript() string {
	if l == nil {
		return ""
	}
	return l.transcript.String()
}

// FileName returns the dated log file name for the current transcript.
func (l *Logger) FileName() string {
	return fmt.Sprintf("%s %s.txt", l.cfg.FilePrefix, l.began.Format("2006-01-02"))
}

// WriteFile appends the transcript, closed with an end-time footer, to the
// log file when file output is enabled, then starts a fresh transcript.
// Failures are logged and swallowed. Returns the path written, if any.
func (l *Logger) WriteFile() string {
	if l == nil {
		return ""
	}

	fmt.Fprintf(l.transcript, "\nEnd Time: %s\n\n", l.now().Format(consoleTimeFormat))
	text := l.transcript.Reset()
	name := l.FileName()
	l.begin()

	if !l.cfg.FileOutput || strings.TrimSpace(l.cfg.Directory) == "" {
		return ""
	}

	path := filepath.Join(l.cfg.Directory, name)
	if err := appendFile(l.cfg.Directory, path, text); err != nil {
		l.Error("failed to save log file", String("path", path), Err(err))
		return ""
	}
	return path
}

func (l *Logger) begin() {
	l.began = l.now()
	fmt.Fprintf(l.transcript, "\n%s\nBegin Time: %s\n\n", separator, l.began.Format(consoleTimeFormat))
}

func appendFile(dir, path, text string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("writing log file: %w", err)
	}
	return f.Close()
}

// consoleMessage swaps bullets for dashes; some terminals mangle them.
func consoleMessage(i any) string {
	if i == nil {
		return ""
	}
	return strings.ReplaceAll(fmt.Sprint(i), "•", "-")
}

// minLevelWriter drops events below min.
type minLevelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (m minLevelWriter) Write(p []byte) (int, error) { return m.w.Write(p) }

func (m minLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < m.min {
		return len(p), nil
	}
	return m.w.Write(p)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset returns the buffered text and empties the buffer.
func (b *syncBuffer) Reset() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.buf.String()
	b.buf.Reset()
	return s
}
