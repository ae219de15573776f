// Command jsbridge evaluates a script in a fresh session and prints the
// mirrored result as JSON.
//
//	jsbridge [-mem bytes] [-stack bytes] [-timeout d] [-e expr | file.js]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cryguy/jsbridge"
	"github.com/cryguy/jsbridge/compress"
	"github.com/cryguy/jsbridge/host"
	"github.com/cryguy/jsbridge/uid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "jsbridge:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := jsbridge.LoadConfigOrDefault()

	fs := flag.NewFlagSet("jsbridge", flag.ContinueOnError)
	mem := fs.Int64("mem", cfg.MemoryLimit, "engine heap limit in bytes (0 = none)")
	stack := fs.Int64("stack", cfg.MaxStackSize, "engine stack limit in engine stack units (0 = safe maximum)")
	timeout := fs.Duration("timeout", cfg.ExecutionTimeout, "evaluation deadline (0 = none)")
	expr := fs.String("e", "", "evaluate expression instead of a file")
	bundle := fs.Bool("bundle", false, "bundle the file's imports with esbuild before evaluating")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *expr == "" && fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected -e expr or exactly one script file")
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	reg := host.NewRegistry()
	if err := registerBuiltins(reg); err != nil {
		return err
	}

	cfg.MemoryLimit, cfg.MaxStackSize, cfg.ExecutionTimeout = *mem, *stack, *timeout
	s, err := jsbridge.New(
		jsbridge.WithConfig(cfg),
		jsbridge.WithResolver(reg),
		jsbridge.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, name := range reg.Names() {
		if err := s.RegisterFunction(name, name); err != nil {
			return err
		}
	}

	var result host.Value
	switch {
	case *expr != "":
		result, err = s.EvalContext(context.Background(), *expr)
	case *bundle:
		result, err = s.EvalBundle(fs.Arg(0))
	default:
		result, err = s.EvalFile(fs.Arg(0))
	}
	if err != nil {
		return err
	}

	out, err := sonic.ConfigStd.MarshalIndent(result.Interface(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func registerBuiltins(reg *host.Registry) error {
	builtins := map[string]any{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"uuid":  uid.New,
		"zstd_roundtrip": func(s string) (string, error) {
			out, err := compress.ZstdDecode(compress.ZstdEncode([]byte(s)))
			return string(out), err
		},
	}
	for name, fn := range builtins {
		if err := reg.DefineFunc(name, fn); err != nil {
			return fmt.Errorf("registering %s: %w", name, err)
		}
	}
	return nil
}

// newLogger writes console output in development and JSON otherwise, to
// stderr so stdout carries only the result.
func newLogger(level string, development bool) (*zap.Logger, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	encoding := "json"
	if development {
		enc = zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoding = "console"
	}

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(l),
		Development:       development,
		Encoding:          encoding,
		EncoderConfig:     enc,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !development,
	}.Build()
}
