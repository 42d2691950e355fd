package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xllrb/xlog"
)

const (
	AppName    = "xllrb"
	AppVersion = "0.1.0"
)

var commands = []*cli.Command{}

func newAppLogger(c *cli.Context) (xlog.XLogger, error) {
	enc := xlog.JSON
	switch c.String("log-encoder") {
	case "json":
	case "text":
		enc = xlog.PlainText
	default:
		return nil, fmt.Errorf("unknown log encoder %q", c.String("log-encoder"))
	}
	return xlog.NewXLogger(
		xlog.WithXLoggerLevelName(c.String("log-level")),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerWriter(zapcore.Lock(os.Stderr)),
	), nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:    AppName,
		Usage:   "Order statistics LLRB tree toolbox",
		Version: AppVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   xlog.LogLevelInfo.String(),
				Usage:   "DEBUG, INFO, WARN or ERROR",
				EnvVars: []string{"XLOG_LVL"},
			},
			&cli.StringFlag{
				Name:  "log-encoder",
				Value: "text",
				Usage: "json or text",
			},
		},
		Commands: commands,
	}
}

func main() {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	}))
	defer undo()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
	}

	if err := newApp().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
