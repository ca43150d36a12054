package logger

import (
	"context"
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger 는 컴포넌트에 주입되는 최소 로거 인터페이스다.
// 필요 시 다른 구현으로 교체할 수 있도록 인터페이스로 노출한다.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields 는 구조화 로그를 위한 공통 필드 타입이다.
type Fields map[string]any

// Log 는 main 패키지에서만 사용하는 프로세스 로거다.
// 라이브러리 코드는 생성자로 Logger 를 주입받는다.
var Log Logger = NewLogger("info")

// InitFromEnv 는 주어진 환경변수 키에서 로그 레벨을 읽어 Log 를 초기화한다.
// 값이 비어 있으면 fallback 레벨을 사용한다.
func InitFromEnv(envKey, fallback string) Logger {
	level := strings.ToLower(os.Getenv(envKey))
	if level == "" {
		level = fallback
	}
	if level == "" {
		level = "info"
	}
	Log = NewLogger(level)
	return Log
}

// NewLogger 는 주어진 레벨로 gookit/slog 기반 로거를 생성한다.
func NewLogger(level string) Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	// 기본 필드는 datetime/level/message 로만 제한하고
	// 나머지 정보는 Fields(top-level 키)로 출력한다.
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// Nop 은 fatal 이상만 출력하는 테스트용 로거다.
func Nop() Logger { return NewLogger("fatal") }

// withServiceName 은 service_name 필드를 SERVICE_NAME 환경변수 기준으로 보강한다.
func withServiceName(fields Fields) Fields {
	if fields == nil {
		fields = Fields{}
	}
	if _, ok := fields["service_name"]; !ok {
		if sn := os.Getenv("SERVICE_NAME"); sn != "" {
			fields["service_name"] = sn
		}
	}
	return fields
}

// InfoWithFields 는 구조화 필드를 포함한 JSON 로그를 출력한다.
// gookit/slog 구현이 아니면 메시지만 출력한다.
func InfoWithFields(lg Logger, msg string, fields Fields) {
	fields = withServiceName(fields)
	if l, ok := lg.(*slog.Logger); ok {
		l.WithFields(slog.M(fields)).Info(msg)
		return
	}
	lg.Info(msg)
}

func WarnWithFields(lg Logger, msg string, fields Fields) {
	fields = withServiceName(fields)
	if l, ok := lg.(*slog.Logger); ok {
		l.WithFields(slog.M(fields)).Warn(msg)
		return
	}
	lg.Warn(msg)
}

func ErrorWithFields(lg Logger, msg string, fields Fields) {
	fields = withServiceName(fields)
	if l, ok := lg.(*slog.Logger); ok {
		l.WithFields(slog.M(fields)).Error(msg)
		return
	}
	lg.Error(msg)
}

// Reporter 는 에러 텔레메트리 수집기에 대한 추상화다.
type Reporter interface {
	Report(ctx context.Context, err error, fields Fields)
}

type logReporter struct {
	lg Logger
}

// NewReporter 는 에러를 구조화 로그로 남기는 Reporter 를 만든다.
func NewReporter(lg Logger) Reporter {
	return &logReporter{lg: lg}
}

func (r *logReporter) Report(_ context.Context, err error, fields Fields) {
	if err == nil {
		return
	}
	f := Fields{}
	for k, v := range fields {
		f[k] = v
	}
	f["error"] = err.Error()
	ErrorWithFields(r.lg, "error reported", f)
}
