package slipstream

import (
	"errors"
	"strings"

	"github.com/grafana/regexp"
)

// Pattern is a compiled path pattern used to match inbound message paths.
// Supported syntax: static segments ('/events'), named parameters (':id',
// ':id?' optional), single-segment wildcards ('*'), and a trailing multi
// segment wildcard ('**'). Examples: '/users/:id', '/events/*/created',
// '/files/**'.
type Pattern struct {
	str    string
	regExp *regexp.Regexp
}

// NewPattern compiles a pattern from a string. Returns an error if the
// pattern syntax is invalid.
func NewPattern(patternStr string) (*Pattern, error) {
	if !strings.HasPrefix(patternStr, "/") {
		return nil, errors.New("pattern must start with '/': " + patternStr)
	}

	segments := strings.Split(strings.TrimPrefix(patternStr, "/"), "/")
	expr := "^"
	for i, segment := range segments {
		switch {
		case segment == "**":
			if i != len(segments)-1 {
				return nil, errors.New("'**' is only valid as the last pattern segment: " + patternStr)
			}
			expr += "(?:/.+)?"
		case segment == "*":
			expr += "/[^/]+"
		case strings.HasPrefix(segment, ":"):
			key := strings.TrimPrefix(segment, ":")
			optional := strings.HasSuffix(key, "?")
			key = strings.TrimSuffix(key, "?")
			if !isValidParamKey(key) {
				return nil, errors.New("invalid parameter name in pattern segment: " + segment)
			}
			if optional {
				expr += "(?:/(?P<" + key + ">[^/]+))?"
			} else {
				expr += "/(?P<" + key + ">[^/]+)"
			}
		case segment == "":
			if len(segments) != 1 {
				return nil, errors.New("pattern contains an empty segment: " + patternStr)
			}
		default:
			expr += "/" + regexp.QuoteMeta(segment)
		}
	}
	expr += "/?$"

	patternRegExp, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	return &Pattern{str: patternStr, regExp: patternRegExp}, nil
}

// Match compares a path to the pattern. If the path matches, the returned
// MessageParams holds the values captured by named parameters and the second
// return value is true.
func (p *Pattern) Match(path string) (MessageParams, bool) {
	matches := p.regExp.FindStringSubmatch(path)
	if len(matches) == 0 {
		return nil, false
	}

	keys := p.regExp.SubexpNames()
	params := make(MessageParams, len(keys))
	for i := 1; i < len(keys); i += 1 {
		if keys[i] != "" && matches[i] != "" {
			params[keys[i]] = matches[i]
		}
	}

	return params, true
}

// String returns the pattern string the Pattern was compiled from.
func (p *Pattern) String() string {
	return p.str
}

func isValidParamKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		isAlphaNum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlphaNum && r != '_' {
			return false
		}
	}
	return true
}
