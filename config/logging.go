package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ServiceName names the API process in log lines and its log file.
const ServiceName = "proofok-api"

// LogWriter is the writer used for application, gin and database logs.
var LogWriter io.Writer = os.Stdout

// LogSink is where one process writes its logs: stdout, plus a per-service
// file under the log directory when it can be opened.
type LogSink struct {
	Service string
	Path    string
	Writer  io.Writer

	file *os.File
}

// LogFilePath returns <dir>/<service>.log. Characters outside
// [A-Za-z0-9._-] in service are replaced so it is always one file name.
func LogFilePath(dir, service string) string {
	if dir == "" {
		dir = "logs"
	}
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, strings.TrimSpace(service))
	if name == "" || strings.Trim(name, ".") == "" {
		name = ServiceName
	}
	return filepath.Join(dir, name+".log")
}

// InitLogging points the standard logger, and LogWriter, at the service's
// sink. A log file that cannot be opened degrades to stdout only.
func InitLogging(service, dir string) *LogSink {
	sink := &LogSink{Service: service, Path: LogFilePath(dir, service), Writer: os.Stdout}

	if err := os.MkdirAll(filepath.Dir(sink.Path), os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create logs directory: %v", err)
	}
	logFile, err := os.OpenFile(sink.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: Failed to open log file %s: %v", sink.Path, err)
	} else {
		sink.file = logFile
		sink.Writer = io.MultiWriter(os.Stdout, logFile)
	}

	LogWriter = sink.Writer
	log.SetOutput(LogWriter)
	log.SetPrefix(fmt.Sprintf("[%s] ", service))
	return sink
}

// HasFile reports whether the sink also writes to its log file.
func (s *LogSink) HasFile() bool {
	return s != nil && s.file != nil
}

// Close detaches the standard logger from the file and closes it.
func (s *LogSink) Close() error {
	if !s.HasFile() {
		return nil
	}
	LogWriter = os.Stdout
	log.SetOutput(LogWriter)
	err := s.file.Close()
	s.file = nil
	return err
}
