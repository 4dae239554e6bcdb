// Package logging provides leveled log output for the mrcio command line
// tools, optionally rotated through a log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/natefinch/lumberjack"
)

// ModeFlag is the minimum severity a message needs to be written.
type ModeFlag uint

const (
	DebugMode ModeFlag = iota
	InfoMode
	WarningMode
	ErrorMode
	SilentMode
)

var (
	mode ModeFlag = InfoMode
	file *lumberjack.Logger
)

// LogConfig selects a rotating log file. With no Logfile, messages go to
// stderr.
type LogConfig struct {
	Logfile string `yaml:"logFile"`
	MaxSize int    `yaml:"maxLogSize"`
	MaxAge  int    `yaml:"maxLogAge"`
}

// SetLogger redirects log output to the configured rotating file.
func (c *LogConfig) SetLogger() {
	if c == nil || c.Logfile == "" {
		log.SetOutput(os.Stderr)
		return
	}
	fmt.Printf("Sending log messages to: %s\n", c.Logfile)
	file = &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	}
	log.SetOutput(file)
}

// SetOutput sends log messages to w. Used by tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// SetLogMode sets the severity required for a message to be printed.
func SetLogMode(newMode ModeFlag) {
	mode = newMode
}

func Debugf(format string, args ...interface{}) {
	if mode <= DebugMode {
		log.Printf(" DEBUG "+format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if mode <= InfoMode {
		log.Printf(" INFO "+format, args...)
	}
}

func Warningf(format string, args ...interface{}) {
	if mode <= WarningMode {
		log.Printf(" WARNING "+format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if mode <= ErrorMode {
		log.Printf(" ERROR "+format, args...)
	}
}

// Shutdown closes the log file, if any.
func Shutdown() {
	if file != nil {
		log.SetOutput(os.Stderr)
		file.Close()
		file = nil
	}
}
