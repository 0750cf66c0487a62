package rt

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchState is the three-way result an incremental regex match reports:
// a complete match needs no more input, a partial match might still
// extend given more bytes, and no-match means the buffered input can never
// match regardless of what follows (spec.md's incremental regex-token
// matcher scenario).
type MatchState int

const (
	NoMatch MatchState = iota
	Partial
	Matched
)

// TokenMatcher incrementally matches buffered input against a fixed regex,
// re-evaluating from the start of the buffer on each Feed call. Go's
// regexp package has no native "does this prefix partially match" API, so
// TokenMatcher approximates it: it anchors the pattern at the start of the
// buffer, and if the anchored match fails, it compares the buffer with the
// pattern's literal prefix (see couldExtend). Re-scanning the whole buffer
// on every Feed suits the token-sized lookaheads Spicy regex fields use
// (field byte counts, not bulk payload scanning).
type TokenMatcher struct {
	re       *regexp.Regexp
	anchored *regexp.Regexp
}

// NewTokenMatcher compiles pattern for incremental matching.
func NewTokenMatcher(pattern string) (*TokenMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rt: invalid regex %q: %w", pattern, err)
	}
	anchored, err := regexp.Compile(`\A(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("rt: invalid regex %q: %w", pattern, err)
	}
	return &TokenMatcher{re: re, anchored: anchored}, nil
}

// Feed evaluates buf (the full input accumulated so far, from the token's
// start) and reports the current match state plus, when Matched, the
// length of the longest anchored match.
func (m *TokenMatcher) Feed(buf []byte) (MatchState, int) {
	if loc := m.anchored.FindIndex(buf); loc != nil {
		return Matched, loc[1]
	}
	// No full anchored match yet. Report Partial if more input could
	// still complete one.
	if couldExtend(m.re, buf) {
		return Partial, 0
	}
	return NoMatch, 0
}

// couldExtend reports whether appending more bytes to buf (which does not
// match yet) could still produce a match, by comparing buf with re's
// literal prefix: buf could extend if it is a prefix of that literal, or
// if it starts with it and the pattern continues past it. A buf that
// differs from the literal cannot. For a pattern with no literal prefix
// (such as [0-9]+) every buf counts as extendable, so this may report
// Partial more often than a true incremental DFA would, which is the safe
// direction for a parser deciding whether to request more input.
func couldExtend(re *regexp.Regexp, buf []byte) bool {
	prefix, complete := re.LiteralPrefix()
	if len(buf) <= len(prefix) {
		return strings.HasPrefix(prefix, string(buf))
	}
	return !complete && strings.HasPrefix(string(buf), prefix)
}
