package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type LogLevel int

// FORCE messages are always emitted, whatever the configured level.
const (
	FORCE LogLevel = iota
	FATAL
	ERROR
	WARN
	INFO
	DEBUG
)

type Logger struct {
	mu       sync.Mutex
	logLevel LogLevel
	logDir   string
	console  io.Writer
	file     *os.File
	logger   *log.Logger
	prefixes map[LogLevel]string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Logger{}
)

func Get(name string) (logger *Logger) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if ln, ok := registry[name]; ok {
		return ln
	}

	return nil
}

// New returns the logger registered under name, creating it with the given
// console writer and level when it does not exist yet.
func New(name string, console io.Writer, logLevel LogLevel) *Logger {
	registryMu.Lock()
	defer registryMu.Unlock()

	if logger, exists := registry[name]; exists {
		return logger
	}

	logger := setupLogger(logLevel, console)

	registry[name] = logger
	return logger
}

// Detached returns a logger that is not registered under any name, so it
// never shares its console with another user of the registry.
func Detached(console io.Writer, logLevel LogLevel) *Logger {
	return setupLogger(logLevel, console)
}

func ResetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, l := range registry {
		_ = l.Close()
	}
	registry = map[string]*Logger{}
}

func setupLogger(logLevel LogLevel, console io.Writer) *Logger {
	if console == nil {
		console = io.Discard
	}

	r := lipgloss.NewRenderer(console)
	fatal := r.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	errStyle := r.NewStyle().Foreground(lipgloss.Color("203"))
	warn := r.NewStyle().Foreground(lipgloss.Color("214"))
	subtle := r.NewStyle().Foreground(lipgloss.Color("240"))

	return &Logger{
		logLevel: logLevel,
		console:  console,
		prefixes: map[LogLevel]string{
			FATAL: fatal.Render("FATAL:") + " ",
			ERROR: errStyle.Render("ERROR:") + " ",
			WARN:  warn.Render("WARN:") + " ",
			INFO:  "",
			DEBUG: subtle.Render("DEBUG:") + " ",
		},
	}
}

// OpenFile mirrors every emitted message into a dated file under logDir.
func (l *Logger) OpenFile(logDir string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %v", err)
	}

	timestamp := time.Now().Format("2006-01-02")

	logFile, err := os.OpenFile(
		filepath.Join(logDir, fmt.Sprintf("front-%s.log", timestamp)),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		_ = l.file.Close()
	}
	l.logDir = logDir
	l.file = logFile
	l.logger = log.New(logFile, "", log.Ldate|log.Ltime)

	return nil
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.logger = nil
	return err
}

func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logLevel
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logLevel = level
}

// SetOutput redirects console output. Used by front ends that capture the
// output of one batch of commands.
func (l *Logger) SetOutput(w io.Writer) io.Writer {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.console
	if w == nil {
		w = io.Discard
	}
	l.console = w
	return prev
}

func (l *Logger) Enabled(level LogLevel) bool {
	return level <= l.Level()
}

func (l *Logger) put(level LogLevel, prefix bool, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level > l.logLevel {
		return
	}

	msg := fmt.Sprintf(format, v...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	if prefix {
		fmt.Fprint(l.console, l.prefixes[level]+msg)
	} else {
		fmt.Fprint(l.console, msg)
	}

	if l.logger != nil {
		l.logger.Print(levelName(level) + ": " + strings.TrimSuffix(msg, "\n"))
	}
}

func (l *Logger) Force(format string, v ...any) {
	l.put(FORCE, false, format, v...)
}

func (l *Logger) Fatal(format string, v ...any) {
	l.put(FATAL, true, format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.put(ERROR, true, format, v...)
}

func (l *Logger) Warn(format string, v ...any) {
	l.put(WARN, true, format, v...)
}

func (l *Logger) Info(format string, v ...any) {
	l.put(INFO, true, format, v...)
}

func (l *Logger) Debug(format string, v ...any) {
	l.put(DEBUG, true, format, v...)
}

// Append continues a previous message at the same level without a prefix.
func (l *Logger) Append(level LogLevel, format string, v ...any) {
	l.put(level, false, format, v...)
}

// ParseLevel maps the one-letter command line values f, e, w, i and d.
func ParseLevel(c byte) (LogLevel, error) {
	switch c {
	case 'f':
		return FATAL, nil
	case 'e':
		return ERROR, nil
	case 'w':
		return WARN, nil
	case 'i':
		return INFO, nil
	case 'd':
		return DEBUG, nil
	}
	return INFO, fmt.Errorf("unknown message level %q", c)
}

func levelName(level LogLevel) string {
	switch level {
	case FORCE:
		return "OUT"
	case FATAL:
		return "FATAL"
	case ERROR:
		return "ERROR"
	case WARN:
		return "WARN"
	case INFO:
		return "INFO"
	case DEBUG:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}
