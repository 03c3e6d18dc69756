package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var rank = map[Level]int{LevelDebug: 0, LevelInfo: 1, LevelWarn: 2, LevelError: 3}

// Logger is safe to use as a nil pointer; it then discards everything.
type Logger struct {
	mu    sync.Mutex
	out   *log.Logger
	level Level
}

func New(w io.Writer, level Level) *Logger {
	if _, ok := rank[level]; !ok {
		level = LevelInfo
	}
	return &Logger{out: log.New(w, "", log.LstdFlags), level: level}
}

func (l *Logger) Level() Level {
	if l == nil {
		return ""
	}
	return l.level
}

func (l *Logger) log(level Level, format string, args ...any) {
	if l == nil || rank[level] < rank[l.level] {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf("%-5s %s", string(level), strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }
