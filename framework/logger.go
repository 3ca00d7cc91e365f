package framework

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// LogLevel is the verbosity threshold for harness output.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// ParseLogLevel converts a configuration string into a LogLevel. Unrecognized
// values fall back to info rather than failing, since logging must never abort a run.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelError:
		return "error"
	default:
		return "info"
	}
}

// Logger is the minimal output interface used throughout the harness. Loggers are
// injected into components rather than accessed as package-level state, and any
// implementation must swallow its own write failures.
type Logger interface {
	Println(args ...interface{})
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Println(args ...interface{})                {}
func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

// CapturedMessage is one log event recorded within a test scope. Attachment, when
// non-empty, is the path of a diagnostic file (screenshot or page source) that was
// saved at the time the event was logged.
type CapturedMessage struct {
	Time       time.Time
	Message    string
	Attachment string
}

type CapturedOutput []CapturedMessage

// CapturingLogger records all output from a test scope. See comments on
// uitest.(*T).DebugLogger() for the rules of logging in parent/child scopes.
type CapturingLogger struct {
	output   []CapturedMessage
	children []*CapturingLogger
	lock     sync.Mutex
}

func (l *CapturingLogger) Println(args ...interface{}) {
	m := strings.TrimRight(fmt.Sprintln(args...), "\r\n") // Sprintln appends a newline
	l.append(CapturedMessage{Time: time.Now(), Message: m})
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.append(CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
}

// Attach records a message together with the path of a diagnostic file.
func (l *CapturingLogger) Attach(attachmentPath string, message string, args ...interface{}) {
	l.append(CapturedMessage{
		Time:       time.Now(),
		Message:    fmt.Sprintf(message, args...),
		Attachment: attachmentPath,
	})
}

func (l *CapturingLogger) append(m CapturedMessage) {
	var children []*CapturingLogger
	l.lock.Lock()
	if len(l.children) == 0 {
		l.output = append(l.output, m)
	} else {
		children = append([]*CapturingLogger(nil), l.children...)
	}
	l.lock.Unlock()
	for _, c := range children {
		c.append(m)
	}
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

// AddChildLogger makes a subtest's logger receive subsequent output sent to the
// parent, seeded with a copy of everything the parent has logged so far.
func (l *CapturingLogger) AddChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	l.children = append(l.children, child)
	output := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	child.lock.Lock()
	child.output = append(output, child.output...)
	child.lock.Unlock()
}

func (l *CapturingLogger) RemoveChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	for i, c := range l.children {
		if c == child {
			l.children = append(l.children[0:i], l.children[i+1:]...)
			break
		}
	}
	l.lock.Unlock()
}

func (output CapturedOutput) ToString(prefix string) string {
	ret := ""
	for _, m := range output {
		if ret != "" {
			ret += "\n"
		}
		ret += fmt.Sprintf("%s[%s] %s", prefix, m.Time.Format(timestampFormat), m.Message)
		if m.Attachment != "" {
			ret += fmt.Sprintf(" (attachment: %s)", m.Attachment)
		}
	}
	return ret
}

type prefixedLogger struct {
	base   Logger
	prefix string
}

func LoggerWithPrefix(baseLogger Logger, prefix string) Logger {
	return prefixedLogger{baseLogger, prefix}
}

func (p prefixedLogger) Println(args ...interface{}) {
	p.base.Println(append([]interface{}{p.prefix}, args...)...)
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.base.Printf(p.prefix+message, args...)
}

// leveledLogger filters messages below a threshold before forwarding them.
type leveledLogger struct {
	base      Logger
	threshold LogLevel
	level     LogLevel
}

// LoggerAtLevel returns a Logger that discards messages when level is below threshold.
func LoggerAtLevel(base Logger, threshold, level LogLevel) Logger {
	return leveledLogger{base: base, threshold: threshold, level: level}
}

func (l leveledLogger) Println(args ...interface{}) {
	if l.level >= l.threshold {
		l.base.Println(args...)
	}
}

func (l leveledLogger) Printf(message string, args ...interface{}) {
	if l.level >= l.threshold {
		l.base.Printf(message, args...)
	}
}

// fileLogger writes timestamped lines to a file. Write errors are reported once to
// stderr and otherwise swallowed; logging failures must never propagate to tests.
type fileLogger struct {
	file        *os.File
	reportedErr bool
	lock        sync.Mutex
}

// NewFileLogger creates a Logger that appends to the file at path.
func NewFileLogger(path string) (Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &fileLogger{file: f}, nil
}

func (f *fileLogger) Println(args ...interface{}) {
	f.write(strings.TrimRight(fmt.Sprintln(args...), "\r\n"))
}

func (f *fileLogger) Printf(message string, args ...interface{}) {
	f.write(fmt.Sprintf(message, args...))
}

func (f *fileLogger) write(message string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	_, err := fmt.Fprintf(f.file, "[%s] %s\n", time.Now().Format(timestampFormat), message)
	if err != nil && !f.reportedErr {
		f.reportedErr = true
		fmt.Fprintf(os.Stderr, "log sink write failed (further failures suppressed): %s\n", err)
	}
}
