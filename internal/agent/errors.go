package agent

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"

	"github.com/rahul/agentctl/internal/task"
	"github.com/rahul/agentctl/internal/workspace"
)

// ErrorKind is the closed set of failure buckets.
type ErrorKind string

const (
	ErrResourceNotFound  ErrorKind = "resource_not_found"
	ErrPermissionDenied  ErrorKind = "permission_denied"
	ErrNetworkOrTimeout  ErrorKind = "network_or_timeout"
	ErrDependencyMissing ErrorKind = "dependency_missing"
	ErrSyntaxInvalid     ErrorKind = "syntax_invalid"
	ErrKeyOrIndexInvalid ErrorKind = "key_or_index_invalid"
	ErrTypeMismatch      ErrorKind = "type_mismatch"
	ErrUnclassified      ErrorKind = "unclassified"
)

// ErrorAnalysis is the diagnosis produced for a failed step.
type ErrorAnalysis struct {
	Kind        ErrorKind
	RootCause   string
	Severity    task.RiskLevel
	Suggestions []string
}

// ClassifyError buckets an error into the closed kind set. Sentinel errors
// from the collaborators are checked first; message heuristics cover
// subprocess and external-tool failures that surface as plain text.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrUnclassified
	}

	switch {
	case errors.Is(err, workspace.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return ErrResourceNotFound
	case errors.Is(err, os.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, context.DeadlineExceeded):
		return ErrNetworkOrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrNetworkOrTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	// Dependency checks come first: "command not found" would otherwise be
	// swallowed by the generic "not found" arm.
	case strings.Contains(msg, "import") || strings.Contains(msg, "module") || strings.Contains(msg, "command not found"):
		return ErrDependencyMissing
	case strings.Contains(msg, "no such file") || strings.Contains(msg, "not found"):
		return ErrResourceNotFound
	case strings.Contains(msg, "permission denied"):
		return ErrPermissionDenied
	case strings.Contains(msg, "connection") || strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout"):
		return ErrNetworkOrTimeout
	case strings.Contains(msg, "syntax"):
		return ErrSyntaxInvalid
	case strings.Contains(msg, "index out of range") || strings.Contains(msg, "key"):
		return ErrKeyOrIndexInvalid
	case strings.Contains(msg, "type") || strings.Contains(msg, "cannot convert"):
		return ErrTypeMismatch
	}
	return ErrUnclassified
}

// AnalyzeError produces the root cause, severity, and fix suggestions for
// a failure.
func AnalyzeError(err error) ErrorAnalysis {
	kind := ClassifyError(err)

	analysis := ErrorAnalysis{
		Kind:     kind,
		Severity: severityFor(kind),
	}

	switch kind {
	case ErrResourceNotFound:
		analysis.RootCause = "File or directory does not exist"
		analysis.Suggestions = []string{
			"Check if the file path is correct",
			"Ensure the file exists before accessing",
			"Create the file or directory if needed",
		}
	case ErrPermissionDenied:
		analysis.RootCause = "Insufficient permissions to access resource"
		analysis.Suggestions = []string{
			"Check file/directory permissions",
			"Run with appropriate privileges",
			"Verify ownership of the resource",
		}
	case ErrNetworkOrTimeout:
		analysis.RootCause = "Network connectivity or timeout issue"
		analysis.Suggestions = []string{
			"Check network connectivity",
			"Verify the service is running",
			"Increase timeout value",
			"Retry the operation",
		}
	case ErrDependencyMissing:
		analysis.RootCause = "Missing or incompatible dependency"
		analysis.Suggestions = []string{
			"Install the missing package",
			"Check the import statement",
			"Verify the tool is on PATH",
		}
	case ErrSyntaxInvalid:
		analysis.RootCause = "Invalid syntax in code"
		analysis.Suggestions = []string{
			"Check for missing brackets, quotes, or colons",
			"Verify indentation is correct",
			"Review the syntax of the statement",
		}
	case ErrKeyOrIndexInvalid:
		analysis.RootCause = "Invalid key or index access"
		analysis.Suggestions = []string{
			"Check that the key or index exists",
			"Validate inputs before access",
		}
	case ErrTypeMismatch:
		analysis.RootCause = "Type mismatch or invalid operation"
		analysis.Suggestions = []string{
			"Check the types of variables",
			"Verify function arguments",
			"Add type conversion if needed",
		}
	default:
		desc := err.Error()
		if len(desc) > 100 {
			desc = desc[:100]
		}
		analysis.RootCause = "Unclassified error: " + desc
		analysis.Suggestions = []string{
			"Check the error message for details",
			"Add error handling around the operation",
		}
	}
	return analysis
}

func severityFor(kind ErrorKind) task.RiskLevel {
	switch kind {
	case ErrPermissionDenied, ErrResourceNotFound, ErrNetworkOrTimeout:
		return task.RiskHigh
	case ErrTypeMismatch, ErrKeyOrIndexInvalid, ErrSyntaxInvalid:
		return task.RiskMedium
	default:
		return task.RiskLow
	}
}
