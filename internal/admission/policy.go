package admission

import (
	"fmt"
	"regexp"
	"strings"
)

// Policy names accepted in configuration.
const (
	PolicyCJK   = "cjk"
	PolicyMixed = "mixed"
)

// Policy is a filename rule shared by the API and its clients.
type Policy struct {
	Name        string
	Pattern     *regexp.Regexp
	Description string
}

var policies = map[string]Policy{
	PolicyCJK: {
		Name:        PolicyCJK,
		Pattern:     regexp.MustCompile(`^[\x{4E00}-\x{9FFF}]+\.pdf$`),
		Description: "filename must contain only Chinese characters and end with .pdf (e.g., 王小明.pdf)",
	},
	PolicyMixed: {
		Name:        PolicyMixed,
		Pattern:     regexp.MustCompile(`^[\x{4E00}-\x{9FFF}A-Za-z0-9 _-]+\.[pP][dD][fF]$`),
		Description: "filename may contain Chinese characters, letters, digits, spaces, underscores or hyphens and must end with .pdf",
	},
}

// PolicyFor resolves a configured policy name.
func PolicyFor(name string) (Policy, error) {
	policy, ok := policies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Policy{}, fmt.Errorf("unknown filename policy %q", name)
	}
	return policy, nil
}

// Match reports whether a normalized filename satisfies the policy.
func (p Policy) Match(filename string) bool {
	return p.Pattern != nil && p.Pattern.MatchString(filename)
}

func (p Policy) rejection() *Rejection {
	return &Rejection{Reason: ReasonFilename, Message: p.Description}
}
