package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// Effect is the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Evaluation carries the outcome of a policy check.
type Evaluation struct {
	Effect Effect
	Reason string
}

// Policy is the deny-list applied to shell commands before any subprocess
// is spawned. A denied command is refused, not executed.
type Policy struct {
	deniedSubstrings []string
	deniedRegex      []*regexp.Regexp
}

func NewPolicy(blockedCommands []string) *Policy {
	p := &Policy{}
	for _, c := range blockedCommands {
		p.DenyCommand(c)
	}
	return p
}

// DenyCommand blocks any command containing the given substring.
func (p *Policy) DenyCommand(substr string) {
	p.deniedSubstrings = append(p.deniedSubstrings, strings.ToLower(substr))
}

// DenyPattern blocks any command matching the given regular expression.
func (p *Policy) DenyPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	p.deniedRegex = append(p.deniedRegex, re)
	return nil
}

// Evaluate checks a command against the deny-list.
func (p *Policy) Evaluate(command string) Evaluation {
	lower := strings.ToLower(command)

	for _, s := range p.deniedSubstrings {
		if strings.Contains(lower, s) {
			return Evaluation{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("command blocked by safety policy: matches %q", s),
			}
		}
	}
	for _, re := range p.deniedRegex {
		if re.MatchString(command) {
			return Evaluation{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("command blocked by safety policy: matches pattern %s", re.String()),
			}
		}
	}

	return Evaluation{Effect: EffectAllow, Reason: "approved by default policy"}
}
