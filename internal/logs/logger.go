package logs

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

type Level string

const (
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
	DEBUG Level = "DEBUG"
)

// levelPriority defines the priority of each log level
// higher value = more severe
var levelPriority = map[Level]int{
	DEBUG: 1,
	INFO:  2,
	WARN:  3,
	ERROR: 4,
}

// ParseLevel maps a config string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return DEBUG
	case "warn", "WARN", "warning", "WARNING":
		return WARN
	case "error", "ERROR":
		return ERROR
	default:
		return INFO
	}
}

type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
}

// Logger keeps the last maxSize entries in memory (served by the admin API)
// and, when out is non-nil, also writes each entry to out as one JSON line.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
	maxSize int
	level   Level
	out     io.Writer
}

// level: minimum log level to record (e.g. INFO, WARN, ERROR, DEBUG)
// maxSize: maximum number of log entries kept in memory
// out: optional sink for JSON log lines; nil keeps logs in memory only
func NewLogger(maxSize int, level Level, out io.Writer) *Logger {
	return &Logger{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
		level:   level,
		out:     out,
	}
}

// log is the internal logging function
// it applies level filtering and ring buffer behavior
func (l *Logger) log(level Level, msg string) {
	// filter logs below the current level
	if levelPriority[level] < levelPriority[l.level] {
		return
	}

	entry := Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.maxSize {
		// remove oldest entry (ring behavior)
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)

	if l.out != nil {
		line, err := json.Marshal(entry)
		if err != nil {
			return
		}
		_, _ = l.out.Write(append(line, '\n'))
	}
}

func (l *Logger) Debug(msg string) {
	l.log(DEBUG, msg)
}

func (l *Logger) Info(msg string) {
	l.log(INFO, msg)
}

func (l *Logger) Warn(msg string) {
	l.log(WARN, msg)
}

func (l *Logger) Error(msg string) {
	l.log(ERROR, msg)
}

func (l *Logger) GetLast(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.entries) {
		out := make([]Entry, len(l.entries))
		copy(out, l.entries)
		return out
	}

	start := len(l.entries) - n
	out := make([]Entry, n)
	copy(out, l.entries[start:])
	return out
}
