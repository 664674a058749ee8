package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Options controls the process logger. It is applied once, on the first call
// to NewLogger.
type Options struct {
	Verbose bool
	// File, when set, receives a copy of every entry with size based rotation.
	File string
}

// NewLogger returns the process wide logger, building it on first use.
func NewLogger(opts Options) *logrus.Logger {
	once.Do(func() {
		logger = newLogger(opts, os.Stderr)
	})
	return logger
}

func newLogger(opts Options, stderr io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		l.SetLevel(logrus.DebugLevel)
	}

	l.SetFormatter(newFormatter(!opts.Verbose))
	l.SetOutput(stderr)
	if opts.File != "" {
		l.AddHook(&fileHook{
			formatter: newFormatter(true),
			writer: &lumberjack.Logger{
				Filename:   opts.File,
				LocalTime:  true,
				Compress:   true,
				MaxSize:    50,
				MaxAge:     7,
				MaxBackups: 3,
			},
		})
	}
	l.SetReportCaller(opts.Verbose)
	return l
}

func newFormatter(noColors bool) *formatter.Formatter {
	return &formatter.Formatter{
		NoColors:        noColors,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
		},
	}
}

// fileHook copies every entry to a file sink. The file never gets color codes.
type fileHook struct {
	formatter logrus.Formatter
	writer    io.Writer
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}
