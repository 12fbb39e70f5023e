package renamer

import "regexp"

// countPattern splits a whole filename into a shortest prefix, the first
// digit run and whatever follows. (?s) lets names containing newlines match.
const countPattern = `(?s)^(.*?)(\d+)(.*)$`

// Match is a filename decomposed around its first digit run.
type Match struct {
	Prefix string
	Count  string
	Suffix string
}

// Name reassembles the filename with count replaced.
func (m Match) Name(count string) string {
	return m.Prefix + count + m.Suffix
}

// Matcher finds the counter in a filename. It is safe for concurrent use.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles the filename pattern.
func NewMatcher() *Matcher {
	return &Matcher{re: regexp.MustCompile(countPattern)}
}

// Match decomposes name. It returns false when name contains no digits.
func (m *Matcher) Match(name string) (Match, bool) {
	sub := m.re.FindStringSubmatch(name)
	if sub == nil {
		return Match{}, false
	}
	return Match{Prefix: sub[1], Count: sub[2], Suffix: sub[3]}, true
}
