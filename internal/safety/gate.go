package safety

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/rahul/agentctl/internal/task"
)

// ApprovalCallback lets a host supply its own approval mechanism instead of
// the interactive prompt.
type ApprovalCallback func(action task.Action, risk task.RiskLevel) bool

// ApprovalResult is the outcome of a batch approval request.
type ApprovalResult struct {
	Approved bool
	Actions  []task.Action
	Reason   string
}

// Gate asks for confirmation before risky actions run. Low-risk actions can
// be auto-approved by policy; everything else needs a callback or an
// interactive yes/no. In a non-interactive host with no callback the gate
// denies rather than failing open.
type Gate struct {
	autoApproveLowRisk bool
	audit              *AuditLog

	in          io.Reader
	out         io.Writer
	interactive func() bool
	exit        func(int)
}

func NewGate(autoApproveLowRisk bool) *Gate {
	return &Gate{
		autoApproveLowRisk: autoApproveLowRisk,
		audit:              NewAuditLog(),
		in:                 os.Stdin,
		out:                os.Stdout,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		exit: os.Exit,
	}
}

// ConfirmAction requests approval for a single action. Every outcome is
// recorded in the audit log.
func (g *Gate) ConfirmAction(action task.Action, callback ApprovalCallback) bool {
	return g.ConfirmActionAtLeast(action, task.RiskLow, callback)
}

// ConfirmActionAtLeast is ConfirmAction with a risk floor. Callers that
// know the action's declared risk pass it here so an action with empty
// text cannot classify as Low and slip past the auto-approve path.
func (g *Gate) ConfirmActionAtLeast(action task.Action, floor task.RiskLevel, callback ApprovalCallback) bool {
	risk := task.MaxRisk(ClassifyRisk(action), floor)

	if risk == task.RiskLow && g.autoApproveLowRisk {
		g.audit.Append(action, risk, true, "auto-approved")
		return true
	}

	if callback != nil {
		approved := callback(action, risk)
		g.audit.Append(action, risk, approved, "callback")
		return approved
	}

	if !g.interactive() {
		g.audit.Append(action, risk, false, "non-interactive")
		return false
	}

	g.printBanner(risk)
	fmt.Fprintf(g.out, "Action: %s\n", action.Name)
	fmt.Fprintf(g.out, "Description: %s\n", action.Description)
	if action.Command != "" {
		fmt.Fprintf(g.out, "Command: %s\n", action.Command)
	}
	if action.Target != "" {
		fmt.Fprintf(g.out, "Target: %s\n", action.Target)
	}
	fmt.Fprintf(g.out, "Risk Level: %s\n\n", strings.ToUpper(string(risk)))

	response, approved := g.prompt("Approve this action? (yes/no): ")
	g.audit.Append(action, risk, approved, response)
	return approved
}

// RequireApproval gates a batch of actions behind a single decision. The
// batch is judged by its most severe member.
func (g *Gate) RequireApproval(actions []task.Action) ApprovalResult {
	if len(actions) == 0 {
		return ApprovalResult{Approved: true}
	}

	maxRisk := task.RiskLow
	risks := make([]task.RiskLevel, len(actions))
	for i, a := range actions {
		risks[i] = ClassifyRisk(a)
		maxRisk = task.MaxRisk(maxRisk, risks[i])
	}

	if maxRisk == task.RiskLow && g.autoApproveLowRisk {
		for _, a := range actions {
			g.audit.Append(a, task.RiskLow, true, "batch-auto-approved")
		}
		return ApprovalResult{Approved: true, Actions: actions, Reason: "Auto-approved low risk batch"}
	}

	if !g.interactive() {
		for i, a := range actions {
			g.audit.Append(a, risks[i], false, "non-interactive")
		}
		return ApprovalResult{Approved: false, Actions: actions, Reason: "Non-interactive host"}
	}

	fmt.Fprintf(g.out, "\nBatch approval request for %d actions:\n", len(actions))
	for i, a := range actions {
		fmt.Fprintf(g.out, "  %d. [%s] %s: %s\n", i+1, risks[i], a.Name, a.Description)
	}

	response, approved := g.prompt("\nApprove all actions? (yes/no): ")
	for i, a := range actions {
		g.audit.Append(a, risks[i], approved, "batch:"+response)
	}

	reason := "User rejected"
	if approved {
		reason = "User batch approval"
	}
	return ApprovalResult{Approved: approved, Actions: actions, Reason: reason}
}

// LogSensitiveAction records an action in the audit trail without prompting.
func (g *Gate) LogSensitiveAction(action task.Action) {
	g.audit.Append(action, ClassifyRisk(action), true, "logged-only")
}

// EmergencyStop halts the process unconditionally. The stop itself is
// audited before exit.
func (g *Gate) EmergencyStop() {
	fmt.Fprintln(g.out, "\nEMERGENCY STOP ACTIVATED")
	fmt.Fprintln(g.out, "All operations halted.")

	g.audit.Append(task.Action{
		Name:        "emergency_stop",
		Description: "Emergency stop activated by user",
	}, task.RiskCritical, false, "emergency")

	g.exit(1)
}

// AuditEntries returns a snapshot of the audit trail.
func (g *Gate) AuditEntries(limit int) []AuditEntry {
	return g.audit.Entries(limit)
}

func (g *Gate) prompt(question string) (string, bool) {
	fmt.Fprint(g.out, question)
	reader := bufio.NewReader(g.in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	response := strings.ToLower(strings.TrimSpace(line))
	return response, response == "yes" || response == "y"
}

func (g *Gate) printBanner(risk task.RiskLevel) {
	switch risk {
	case task.RiskCritical:
		fmt.Fprintf(g.out, "\n%s\n", strings.Repeat("=", 60))
		fmt.Fprintln(g.out, "CRITICAL RISK ACTION - REQUIRES EXPLICIT CONFIRMATION")
		fmt.Fprintf(g.out, "%s\n", strings.Repeat("=", 60))
	case task.RiskHigh:
		fmt.Fprintf(g.out, "\n%s\n", strings.Repeat("=", 50))
		fmt.Fprintln(g.out, "HIGH RISK ACTION")
		fmt.Fprintf(g.out, "%s\n", strings.Repeat("=", 50))
	default:
		fmt.Fprintf(g.out, "\n%s\n", strings.Repeat("=", 40))
		fmt.Fprintln(g.out, "Action requires confirmation")
		fmt.Fprintf(g.out, "%s\n", strings.Repeat("=", 40))
	}
}
