package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/danilofalcao/torchserve-gateway/internal/constants"
	contextutils "github.com/danilofalcao/torchserve-gateway/internal/utils/context"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Fallback = New(context.Background(), "fallback", DEBUG, make(chan string, 1))
)

// Logger writes leveled, request-tagged lines. A Logger and its clones share
// one sink, so lines from concurrent requests never interleave mid-line.
type Logger struct {
	name   string
	ctx    context.Context
	level  LogLevel
	exitCh chan string
	sink   *sink
}

type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.w, line)
}

func New(ctx context.Context, name string, level LogLevel, exitCh chan string) *Logger {
	return &Logger{
		name:   name,
		ctx:    ctx,
		level:  level,
		exitCh: exitCh,
		sink:   &sink{w: os.Stdout},
	}
}

// WithWriter redirects output, replacing stdout.
func (l *Logger) WithWriter(w io.Writer) *Logger {
	l.sink = &sink{w: w}
	return l
}

// WithFile tees output into a size-rotated log file. The returned closer
// releases the file.
func (l *Logger) WithFile(path string) (*Logger, io.Closer) {
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	l.sink = &sink{w: io.MultiWriter(l.sink.w, file)}
	return l, file
}

func (l *Logger) out(ctx context.Context, s string, level LogLevel) {
	ts := time.Now().Local().Format(time.DateTime)
	if reqId := contextutils.GetRequestID(ctx); reqId != "" {
		l.sink.write(fmt.Sprintf("[%s][%s][%s][%s] %s\n", ts, level.String(), l.name, reqId, s))
		return
	}
	l.sink.write(fmt.Sprintf("[%s][%s][%s] %s\n", ts, level.String(), l.name, s))
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) Level() LogLevel {
	return l.level
}

// Clone returns a named child logger sharing level, sink and exit channel,
// and a copy of ctx carrying it.
func (l *Logger) Clone(ctx context.Context, name string) (*Logger, context.Context) {
	lgr := &Logger{
		name:   name,
		ctx:    l.ctx,
		level:  l.level,
		exitCh: l.exitCh,
		sink:   l.sink,
	}
	return lgr, context.WithValue(ctx, constants.LoggerKey, lgr)
}

func (l *Logger) WithLevel(level LogLevel) *Logger {
	l.level = level
	return l
}

func (l *Logger) Trace(ctx context.Context, s string) {
	if l.level > TRACE {
		return
	}
	l.out(ctx, s, TRACE)
}

func (l *Logger) Tracef(ctx context.Context, s string, args ...any) {
	l.Trace(ctx, fmt.Sprintf(s, args...))
}

func (l *Logger) Debug(ctx context.Context, s string) {
	if l.level > DEBUG {
		return
	}
	l.out(ctx, s, DEBUG)
}

func (l *Logger) Debugf(ctx context.Context, s string, args ...any) {
	l.Debug(ctx, fmt.Sprintf(s, args...))
}

func (l *Logger) Info(ctx context.Context, s string) {
	if l.level > INFO {
		return
	}
	l.out(ctx, s, INFO)
}

func (l *Logger) Infof(ctx context.Context, s string, args ...any) {
	l.Info(ctx, fmt.Sprintf(s, args...))
}

func (l *Logger) Warn(ctx context.Context, s string) {
	if l.level > WARN {
		return
	}
	l.out(ctx, s, WARN)
}

func (l *Logger) Warnf(ctx context.Context, s string, args ...any) {
	l.Warn(ctx, fmt.Sprintf(s, args...))
}

func (l *Logger) Error(ctx context.Context, s string) {
	if l.level > ERROR {
		return
	}
	l.out(ctx, s, ERROR)
}

func (l *Logger) Errorf(ctx context.Context, s string, args ...any) {
	l.Error(ctx, fmt.Sprintf(s, args...))
}

// Fatal logs s and hands it to the exit channel without blocking.
func (l *Logger) Fatal(ctx context.Context, s string) {
	if l.level > FATAL {
		return
	}
	l.out(ctx, s, FATAL)
	select {
	case l.exitCh <- s:
	default:
	}
}

func (l *Logger) Fatalf(ctx context.Context, s string, args ...any) {
	l.Fatal(ctx, fmt.Sprintf(s, args...))
}
