// Package pipeline orchestrates catalog lookups, resolution and rendering.
//
// Both the CLI and the HTTP API drive the engine through a [Runner], so
// defaults, validation and result caching behave the same everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(cat, store, nil, logger)
//	g, hit, err := runner.Graph(ctx, pipeline.Options{Code: "CMPUT 301", Mode: pipeline.ModeFull})
//	if err != nil {
//	    return err
//	}
//	svg, err := runner.Render(ctx, g, pipeline.FormatSVG)
package pipeline

import (
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/ast"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/cache"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/closure"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

const (
	// DefaultMaxDepth is the closure depth when none is given.
	DefaultMaxDepth = closure.DefaultMaxDepth

	// MaxAllowedDepth bounds caller-supplied closure depths.
	MaxAllowedDepth = 10

	// DefaultOperator wraps operator-less groups.
	DefaultOperator = string(ast.KindOr)
)

// Graph modes.
const (
	ModeShallow = "shallow" // the course's own requirement tree
	ModeFull    = "full"    // transitively expanded requirement tree
	ModeClosure = "closure" // flattened reachability
)

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidModes is the set of graph modes.
var ValidModes = map[string]bool{ModeShallow: true, ModeFull: true, ModeClosure: true}

// ValidFormats is the set of output formats.
var ValidFormats = map[string]bool{FormatJSON: true, FormatDOT: true, FormatSVG: true}

// Options configures one request.
type Options struct {
	Code string `json:"code"`
	Mode string `json:"mode,omitempty"`

	// Closure options
	MaxDepth   int      `json:"max_depth,omitempty"`
	Coreqs     bool     `json:"coreqs,omitempty"`
	HighSchool []string `json:"high_school,omitempty"`

	// AST options
	DefaultOperator string `json:"default_operator,omitempty"`
	Memoize         bool   `json:"memoize,omitempty"`

	// Refresh bypasses cached results.
	Refresh bool `json:"refresh,omitempty"`

	CodePattern *regexp.Regexp `json:"-"`
	Logger      *log.Logger    `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if err := errors.ValidateCourseCode(o.Code); err != nil {
		return err
	}
	o.Code = requirement.NormalizeCode(o.Code)

	if o.Mode == "" {
		o.Mode = ModeFull
	}
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}

	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if err := errors.ValidateDepth(o.MaxDepth, MaxAllowedDepth); err != nil {
		return err
	}

	o.DefaultOperator = strings.ToLower(strings.TrimSpace(o.DefaultOperator))
	if o.DefaultOperator == "" {
		o.DefaultOperator = DefaultOperator
	}
	if o.DefaultOperator != string(ast.KindAnd) && o.DefaultOperator != string(ast.KindOr) {
		return errors.New(errors.ErrCodeInvalidInput, "default operator must be \"and\" or \"or\", got %q", o.DefaultOperator)
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateMode checks that mode is a known graph mode.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid mode: %q (must be one of: full, shallow, closure)", mode)
	}
	return nil
}

// ValidateFormat checks that format is a known output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ClosureOptions returns the resolver options.
func (o *Options) ClosureOptions() closure.Options {
	return closure.Options{
		MaxDepth:    o.MaxDepth,
		HighSchool:  o.HighSchool,
		CodePattern: o.CodePattern,
		Coreqs:      o.Coreqs,
	}
}

// ASTOptions returns the transformer options.
func (o *Options) ASTOptions() ast.Options {
	return ast.Options{DefaultOperator: ast.Kind(o.DefaultOperator), CodePattern: o.CodePattern}
}

// ClosureKeyOpts returns cache key options for closure results.
func (o *Options) ClosureKeyOpts() cache.ClosureKeyOpts {
	hs := make([]string, 0, len(o.HighSchool))
	for _, s := range o.HighSchool {
		hs = append(hs, strings.ToUpper(strings.TrimSpace(s)))
	}
	slices.Sort(hs)
	return cache.ClosureKeyOpts{
		MaxDepth:    o.MaxDepth,
		Coreqs:      o.Coreqs,
		HighSchool:  slices.Compact(hs),
		CodePattern: o.codePatternSource(),
	}
}

func (o *Options) codePatternSource() string {
	if o.CodePattern == nil {
		return ""
	}
	return o.CodePattern.String()
}

// GraphKeyOpts returns cache key options for graphs. Closure graphs depend
// on the closure options as well.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	k := cache.GraphKeyOpts{Mode: o.Mode, CodePattern: o.codePatternSource()}
	switch o.Mode {
	case ModeClosure:
		c := o.ClosureKeyOpts()
		k.MaxDepth, k.Coreqs, k.HighSchool = c.MaxDepth, c.Coreqs, c.HighSchool
	default:
		k.DefaultOperator = o.DefaultOperator
	}
	return k
}
