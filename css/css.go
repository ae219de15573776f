// Package css minifies, lowers and validates stylesheets with the esbuild
// CSS loader.
package css

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	esbuild "github.com/evanw/esbuild/pkg/api"
)

// ErrInvalid is wrapped by every parse failure.
var ErrInvalid = errors.New("css: invalid stylesheet")

var browserEngines = map[string]esbuild.EngineName{
	"chrome":     esbuild.EngineChrome,
	"firefox":    esbuild.EngineFirefox,
	"safari":     esbuild.EngineSafari,
	"edge":       esbuild.EngineEdge,
	"ie":         esbuild.EngineIE,
	"opera":      esbuild.EngineOpera,
	"ios":        esbuild.EngineIOS,
	"ios_safari": esbuild.EngineIOS,
}

// Minifier holds the browser targets that syntax lowering and vendor
// prefixing aim for. It is safe for concurrent use.
type Minifier struct {
	mu      sync.RWMutex
	engines []esbuild.Engine
}

// New returns a Minifier with no browser targets.
func New() *Minifier {
	return &Minifier{}
}

// SetBrowserTargets replaces the targets with major versions keyed by
// browser name (chrome, firefox, safari, edge, ie, opera, ios). Names are
// case-insensitive; unknown names and non-positive versions are ignored.
func (m *Minifier) SetBrowserTargets(browsers map[string]int) {
	names := make([]string, 0, len(browsers))
	for name := range browsers {
		names = append(names, name)
	}
	sort.Strings(names)

	var engines []esbuild.Engine
	for _, name := range names {
		engine, ok := browserEngines[strings.ToLower(name)]
		version := browsers[name]
		if !ok || version <= 0 {
			continue
		}
		engines = append(engines, esbuild.Engine{Name: engine, Version: strconv.Itoa(version)})
	}

	m.mu.Lock()
	m.engines = engines
	m.mu.Unlock()
}

func (m *Minifier) targets() []esbuild.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engines
}

// Minify returns css with whitespace, syntax and identifiers minified for
// the configured targets.
func (m *Minifier) Minify(css string) (string, error) {
	return run(css, esbuild.TransformOptions{
		MinifyWhitespace: true,
		MinifySyntax:     true,
		Engines:          m.targets(),
	}, false)
}

// Transform lowers css for the configured targets without minifying.
func (m *Minifier) Transform(css string) (string, error) {
	return run(css, esbuild.TransformOptions{Engines: m.targets()}, false)
}

// Format parses css and pretty-prints it unchanged.
func (m *Minifier) Format(css string) (string, error) {
	return run(css, esbuild.TransformOptions{}, false)
}

// Validate reports whether css parses cleanly. Recoverable syntax problems
// count as errors.
func (m *Minifier) Validate(css string) error {
	_, err := run(css, esbuild.TransformOptions{}, true)
	return err
}

// Analysis summarizes a stylesheet.
type Analysis struct {
	RulesCount int
}

// Analyze parses css and counts its top-level rules.
func (m *Minifier) Analyze(css string) (Analysis, error) {
	out, err := run(css, esbuild.TransformOptions{MinifyWhitespace: true}, false)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{RulesCount: countTopLevel(out)}, nil
}

func run(css string, opts esbuild.TransformOptions, strict bool) (string, error) {
	opts.Loader = esbuild.LoaderCSS
	opts.LogLevel = esbuild.LogLevelSilent
	result := esbuild.Transform(css, opts)

	msgs := result.Errors
	if strict {
		msgs = append(msgs, result.Warnings...)
	}
	if len(msgs) > 0 {
		texts := make([]string, len(msgs))
		for i, msg := range msgs {
			texts[i] = location(msg) + msg.Text
		}
		return "", fmt.Errorf("%w: %s", ErrInvalid, strings.Join(texts, "; "))
	}
	return string(result.Code), nil
}

func location(msg esbuild.Message) string {
	if msg.Location == nil {
		return ""
	}
	return fmt.Sprintf("%d:%d: ", msg.Location.Line, msg.Location.Column)
}

// countTopLevel counts top-level rules in minified output: blocks closed
// at depth zero plus bodiless at-rules such as @import.
func countTopLevel(css string) int {
	var (
		n     int
		depth int
		quote byte
	)
	for i := 0; i < len(css); i++ {
		c := css[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				n++
			}
		case c == ';' && depth == 0:
			n++
		}
	}
	return n
}
