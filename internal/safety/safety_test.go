package safety

import (
	"strings"
	"testing"

	"github.com/rahul/agentctl/internal/task"
)

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		command string
		want    task.RiskLevel
	}{
		{"rm -rf /", task.RiskCritical},
		{"dd if=/dev/zero of=/dev/sda", task.RiskCritical},
		{"psql -c 'DROP DATABASE prod'", task.RiskCritical},
		{"git push --force origin main", task.RiskCritical},
		{"rm -rf build/", task.RiskHigh},
		{"sudo apt upgrade", task.RiskHigh},
		{"git push origin feature", task.RiskHigh},
		{"kubectl delete pod web-0", task.RiskHigh},
		{"mv a.txt b.txt", task.RiskMedium},
		{"git commit -m 'update'", task.RiskMedium},
		{"chmod +x run.sh", task.RiskMedium},
		{"ls -la", task.RiskLow},
		{"cat README.md", task.RiskLow},
	}

	for _, tc := range cases {
		got := ClassifyRisk(task.Action{Name: "execute_shell", Description: "run command", Command: tc.command})
		if got != tc.want {
			t.Errorf("ClassifyRisk(%q) = %s, want %s", tc.command, got, tc.want)
		}
	}
}

func TestClassifyRisk_Monotonic(t *testing.T) {
	// A command matching a critical pattern also matches high patterns;
	// the critical tier must win.
	got := ClassifyRisk(task.Action{Command: "rm -rf / --no-preserve-root"})
	if got != task.RiskCritical {
		t.Errorf("Expected critical, got %s", got)
	}
}

func TestClassifyRisk_NoCommandUsesDescription(t *testing.T) {
	got := ClassifyRisk(task.Action{Name: "git_push", Description: "git push to remote"})
	if got != task.RiskHigh {
		t.Errorf("Expected high risk from description, got %s", got)
	}
}

func TestConfirmAction_AutoApproveLow(t *testing.T) {
	g := NewGate(true)
	g.interactive = func() bool { return false }

	called := false
	action := task.Action{Name: "read_file", Description: "read a config file"}

	approved := g.ConfirmAction(action, nil)
	if !approved {
		t.Error("Expected low-risk action to be auto-approved")
	}
	if called {
		t.Error("No callback should be invoked for auto-approved actions")
	}

	entries := g.AuditEntries(0)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].UserResponse != "auto-approved" || !entries[0].Approved {
		t.Errorf("Unexpected audit entry: %+v", entries[0])
	}
}

func TestConfirmAction_Callback(t *testing.T) {
	g := NewGate(false)
	g.interactive = func() bool { return false }

	var gotRisk task.RiskLevel
	cb := func(a task.Action, r task.RiskLevel) bool {
		gotRisk = r
		return true
	}

	approved := g.ConfirmAction(task.Action{Name: "git_push", Command: "git push origin main"}, cb)
	if !approved {
		t.Error("Expected callback approval to be honored")
	}
	if gotRisk != task.RiskHigh {
		t.Errorf("Expected callback to receive high risk, got %s", gotRisk)
	}
}

func TestConfirmActionAtLeast_FloorsRisk(t *testing.T) {
	g := NewGate(true)
	g.interactive = func() bool { return false }

	// The action text alone classifies as Low, which auto-approve would
	// wave through; the declared floor must keep it on the gated path.
	action := task.Action{Name: "git_push", Description: "publish the branch"}
	if g.ConfirmActionAtLeast(action, task.RiskHigh, nil) {
		t.Error("Floored risk must not be auto-approved")
	}

	entries := g.AuditEntries(0)
	if len(entries) != 1 || entries[0].RiskLevel != task.RiskHigh || entries[0].Approved {
		t.Errorf("Expected a denied High audit entry, got %+v", entries)
	}
}

func TestConfirmAction_NonInteractiveDenies(t *testing.T) {
	g := NewGate(true)
	g.interactive = func() bool { return false }

	approved := g.ConfirmAction(task.Action{Name: "execute_shell", Command: "sudo rm -rf build"}, nil)
	if approved {
		t.Error("Medium+ risk with no callback must be denied in a non-interactive host")
	}

	entries := g.AuditEntries(0)
	if len(entries) != 1 || entries[0].UserResponse != "non-interactive" || entries[0].Approved {
		t.Errorf("Expected denied non-interactive audit entry, got %+v", entries)
	}
}

func TestConfirmAction_InteractivePrompt(t *testing.T) {
	g := NewGate(false)
	g.interactive = func() bool { return true }
	g.in = strings.NewReader("YES\n")
	var out strings.Builder
	g.out = &out

	approved := g.ConfirmAction(task.Action{Name: "git_commit", Command: "git commit -m x"}, nil)
	if !approved {
		t.Error("Expected case-insensitive yes to approve")
	}
	if !strings.Contains(out.String(), "Risk Level: MEDIUM") {
		t.Errorf("Prompt missing risk level, got: %s", out.String())
	}
}

func TestConfirmAction_InteractiveReject(t *testing.T) {
	g := NewGate(false)
	g.interactive = func() bool { return true }
	g.in = strings.NewReader("no\n")
	g.out = &strings.Builder{}

	if g.ConfirmAction(task.Action{Name: "git_commit", Command: "git commit"}, nil) {
		t.Error("Expected no to reject")
	}
}

func TestRequireApproval_Batch(t *testing.T) {
	g := NewGate(true)
	g.interactive = func() bool { return false }

	actions := []task.Action{
		{Name: "read_file", Description: "read settings"},
		{Name: "read_file", Description: "read manifest"},
	}

	res := g.RequireApproval(actions)
	if !res.Approved {
		t.Error("Expected all-low batch to be auto-approved")
	}

	entries := g.AuditEntries(0)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 audit entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.UserResponse != "batch-auto-approved" {
			t.Errorf("Expected batch-auto-approved marker, got %q", e.UserResponse)
		}
	}
}

func TestRequireApproval_BatchMaxRisk(t *testing.T) {
	g := NewGate(true)
	g.interactive = func() bool { return false }

	actions := []task.Action{
		{Name: "read_file", Description: "read settings"},
		{Name: "execute_shell", Command: "sudo systemctl restart app"},
	}

	res := g.RequireApproval(actions)
	if res.Approved {
		t.Error("A batch containing a high-risk action must not be auto-approved")
	}
}

func TestRequireApproval_Empty(t *testing.T) {
	g := NewGate(false)
	if !g.RequireApproval(nil).Approved {
		t.Error("Empty batch should be approved")
	}
}

func TestEmergencyStop(t *testing.T) {
	g := NewGate(true)
	g.out = &strings.Builder{}

	var exitCode = -1
	g.exit = func(code int) { exitCode = code }

	g.EmergencyStop()

	if exitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", exitCode)
	}
	entries := g.AuditEntries(0)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(entries))
	}
	e := entries[0]
	if e.RiskLevel != task.RiskCritical || e.Approved || e.UserResponse != "emergency" {
		t.Errorf("Unexpected emergency audit entry: %+v", e)
	}
}

func TestAuditEntries_ReturnsCopy(t *testing.T) {
	g := NewGate(true)
	g.interactive = func() bool { return false }
	g.ConfirmAction(task.Action{Name: "read_file"}, nil)

	entries := g.AuditEntries(0)
	entries[0].Action = "tampered"

	fresh := g.AuditEntries(0)
	if fresh[0].Action == "tampered" {
		t.Error("Audit accessor must return a copy")
	}
}

func TestPolicy_Evaluate(t *testing.T) {
	p := NewPolicy([]string{"rm -rf /", "mkfs"})
	if err := p.DenyPattern(`shutdown\s+-h`); err != nil {
		t.Fatal(err)
	}

	if p.Evaluate("ls -la").Effect != EffectAllow {
		t.Error("Expected benign command to be allowed")
	}
	if p.Evaluate("RM -RF / ").Effect != EffectDeny {
		t.Error("Expected substring deny to be case-insensitive")
	}
	if p.Evaluate("shutdown -h now").Effect != EffectDeny {
		t.Error("Expected regex deny to match")
	}
}
