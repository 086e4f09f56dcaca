// Package logging configures the zerolog logger used by assocctl.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	logPrefix     = "regassoc-"
	logSuffix     = ".log"
	dateLayout    = "2006-01-02"
	retentionDays = 30
)

// Options configures Init.
type Options struct {
	Verbosity int       // 0 warn, 1 info, 2 debug, 3+ trace
	Quiet     bool      // only errors on the console
	NoColor   bool      // plain console output
	Console   io.Writer // console destination. Default: os.Stderr
	FileDir   string    // if set, also write JSON to a daily file in this directory
}

// Init builds the logger. The returned close function releases the log file
// and is never nil.
func Init(opts Options) (zerolog.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
		NoColor:    opts.NoColor,
	}}
	closeFn := func() error { return nil }

	if opts.FileDir != "" {
		f, err := openLogFile(opts.FileDir, time.Now())
		if err != nil {
			return zerolog.Nop(), closeFn, err
		}
		writers = append(writers, f)
		closeFn = f.Close
	}

	level := Level(opts.Verbosity)
	if opts.Quiet {
		level = zerolog.ErrorLevel
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp()
	if opts.Verbosity >= 2 {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), closeFn, nil
}

// Level maps a -v count to a zerolog level.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// FileName returns the daily log file name for t.
func FileName(t time.Time) string {
	return logPrefix + t.Format(dateLayout) + logSuffix
}

func openLogFile(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	// best-effort
	CleanOldLogs(dir, now)

	return os.OpenFile(filepath.Join(dir, FileName(now)), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// CleanOldLogs removes daily log files dated more than the retention period
// before now. Files that do not follow the naming scheme are left alone.
func CleanOldLogs(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}

		logDate, err := time.Parse(dateLayout, strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), logPrefix))
		if err != nil {
			continue
		}

		if logDate.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}
