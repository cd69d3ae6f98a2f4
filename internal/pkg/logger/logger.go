package logger

import (
	"context"

	"go.uber.org/zap"
)

var global *zap.SugaredLogger

func init() {
	l, _ := zap.NewProduction()
	global = l.Sugar()
}

// Init replaces the default production logger. Call once at startup.
func Init(debug bool) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	global = l.Sugar()
}

func Info(_ context.Context, msg string) {
	global.Info(msg)
}

func Infof(_ context.Context, format string, args ...any) {
	global.Infof(format, args...)
}

func Warnf(_ context.Context, format string, args ...any) {
	global.Warnf(format, args...)
}

func Error(_ context.Context, msg string) {
	global.Error(msg)
}

func Errorf(_ context.Context, format string, args ...any) {
	global.Errorf(format, args...)
}

func Fatal(_ context.Context, err error) {
	global.Fatal(err)
}
