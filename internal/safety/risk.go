// Package safety classifies action risk, gates dangerous actions behind
// confirmation, and keeps the append-only audit trail.
package safety

import (
	"strings"

	"github.com/rahul/agentctl/internal/task"
)

// Pattern tiers are checked most severe first; the first matching tier wins.
// Matches are plain substring tests against the lowercased command (or
// "name description" when no command is present).

var criticalPatterns = []string{
	"rm -rf /",
	"rm -rf /*",
	"mkfs.",
	"dd if=",
	":(){:|:&};:",
	"chmod -r 777 /",
	"> /dev/sd",
	"git push --force origin main",
	"git push --force origin master",
	"drop database",
	"delete from",
}

var highPatterns = []string{
	"rm -rf",
	"rm -r",
	"git push",
	"git reset --hard",
	"git checkout --",
	"sudo ",
	"pip install",
	"npm install -g",
	"docker rm",
	"kubectl delete",
}

var mediumPatterns = []string{
	"mv ",
	"cp ",
	"git commit",
	"git merge",
	"chmod",
	"chown",
	"pip",
	"npm",
	"apt install",
}

// ClassifyRisk assigns a risk level to an action from its command or
// name/description text.
func ClassifyRisk(action task.Action) task.RiskLevel {
	check := action.Command
	if check == "" {
		check = action.Name + " " + action.Description
	}
	check = strings.ToLower(check)

	if matchesAny(check, criticalPatterns) {
		return task.RiskCritical
	}
	if matchesAny(check, highPatterns) {
		return task.RiskHigh
	}
	if matchesAny(check, mediumPatterns) {
		return task.RiskMedium
	}
	return task.RiskLow
}

func matchesAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
