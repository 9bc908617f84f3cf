package eventbus

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/tidwall/match"
)

// PatternKind identifies how a Pattern tests event names.
type PatternKind int

const (
	// PatternExact matches only the identical event name.
	PatternExact PatternKind = iota
	// PatternGlob matches with '*' and '?' wildcards.
	PatternGlob
	// PatternRegexp matches with a regular expression.
	PatternRegexp
	// PatternFunc matches with a caller supplied predicate.
	PatternFunc
)

func (k PatternKind) String() string {
	switch k {
	case PatternExact:
		return "exact"
	case PatternGlob:
		return "glob"
	case PatternRegexp:
		return "regexp"
	case PatternFunc:
		return "func"
	default:
		return fmt.Sprintf("PatternKind(%d)", int(k))
	}
}

// Pattern is what a registration is filed and matched under.
//
// Key is the bucket a registration is stored in; Matches is the test run
// against the announced event name. Only registrations stored under the
// announced name's key are tested, so a glob or regexp pattern is reached
// only when an event named exactly after its key is announced (unless the
// bus was built WithPatternScan).
type Pattern struct {
	kind PatternKind
	key  string
	re   *regexp.Regexp
	pred func(string) bool
}

// Exact returns a pattern matching only name.
func Exact(name string) Pattern {
	return Pattern{kind: PatternExact, key: name}
}

// Glob returns a pattern matching names with '*' (any run of characters)
// and '?' (any single character) wildcards.
func Glob(expr string) (Pattern, error) {
	if expr == "" {
		return Pattern{}, fmt.Errorf("%w: empty glob", ErrInvalidPattern)
	}
	return Pattern{kind: PatternGlob, key: expr}, nil
}

// MustGlob is like Glob but panics on an invalid expression.
func MustGlob(expr string) Pattern {
	p, err := Glob(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Regexp returns a pattern matching names accepted by re.
// Its key is re.String().
func Regexp(re *regexp.Regexp) (Pattern, error) {
	if re == nil {
		return Pattern{}, fmt.Errorf("%w: nil regexp", ErrInvalidPattern)
	}
	return Pattern{kind: PatternRegexp, key: re.String(), re: re}, nil
}

// CompileRegexp compiles expr and returns it as a pattern.
func CompileRegexp(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return Regexp(re)
}

// Func returns a pattern filed under key and matching names accepted by pred.
func Func(key string, pred func(name string) bool) (Pattern, error) {
	if pred == nil {
		return Pattern{}, fmt.Errorf("%w: nil predicate", ErrInvalidPattern)
	}
	return Pattern{kind: PatternFunc, key: key, pred: pred}, nil
}

// Kind returns the pattern kind.
func (p Pattern) Kind() PatternKind { return p.kind }

// Key returns the canonical registry key of the pattern.
func (p Pattern) Key() string { return p.key }

// Matches reports whether the pattern accepts the event name.
func (p Pattern) Matches(name string) bool {
	switch p.kind {
	case PatternGlob:
		return match.Match(name, p.key)
	case PatternRegexp:
		return p.re.MatchString(name)
	case PatternFunc:
		return p.pred(name)
	default:
		return name == p.key
	}
}

// Equal reports whether two patterns have the same kind and key.
// Func patterns are compared by key only.
func (p Pattern) Equal(other Pattern) bool {
	return p.kind == other.kind && p.key == other.key
}

func (p Pattern) String() string {
	if p.kind == PatternExact {
		return p.key
	}
	return p.kind.String() + ":" + p.key
}

// CanonicalName returns the registry key for an announced event name. It
// fails with ErrInvalidEventName for empty names and invalid UTF-8.
func CanonicalName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidEventName)
	}
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidEventName, name)
	}
	return name, nil
}
