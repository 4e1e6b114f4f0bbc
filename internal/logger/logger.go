// Package logger builds the structured logger shared by every component.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// New returns a leveled key/value logger writing to w. Unknown levels fall
// back to info.
func New(w io.Writer, level string) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "w3faucet",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	l.SetStyles(styles())
	return l
}

// Discard returns a logger that drops everything. Used by tests and by
// components constructed without a logger.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OpenFile opens (appending) the log file used while the dashboard owns the
// terminal.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Levels = map[log.Level]lipgloss.Style{
		log.DebugLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).SetString("DEBUG"),
		log.InfoLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00B4D8")).SetString("INFO"),
		log.WarnLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB800")).SetString("WARN"),
		log.ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).SetString("ERROR"),
		log.FatalLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).Bold(true).SetString("FATAL"),
	}
	return s
}
