package logger

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#79c3ee")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e5c76b")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e05f65")).Bold(true)
)

var (
	infoPrefix  = infoStyle.Render("[INFO]") + " "
	warnPrefix  = warnStyle.Render("[WARN]") + " "
	errorPrefix = errorStyle.Render("[ERROR]") + " "
)

type Logger struct {
	logger *log.Logger
	// SetPrefix and Print are separate calls on the std logger, so a level
	// switch and its line are guarded together.
	mu sync.Mutex
}

func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout)
}

// NewLoggerTo returns a Logger writing to w.
func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{
		logger: log.New(w, "", log.LstdFlags),
	}
}

// SetOutput redirects the logger, e.g. to io.Discard in tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

func (l *Logger) println(prefix string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetPrefix(prefix)
	l.logger.Println(v...)
}

func (l *Logger) printf(prefix, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetPrefix(prefix)
	l.logger.Printf(format, v...)
}

func (l *Logger) Info(v ...interface{}) {
	l.println(infoPrefix, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.printf(infoPrefix, format, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.println(warnPrefix, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.printf(warnPrefix, format, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.println(errorPrefix, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.printf(errorPrefix, format, v...)
}
