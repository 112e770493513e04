package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul/agentctl/internal/llm"
)

// ReasoningResult is the outcome of the reasoning fallback.
type ReasoningResult struct {
	Conclusion     string
	Confidence     float64
	ChainOfThought []string
}

// Reasoner handles steps no tool can serve. With an LLM it produces
// chain-of-thought reasoning; without one it degrades to a deterministic
// placeholder analysis.
type Reasoner struct {
	llm llm.Completer
}

func NewReasoner(client llm.Completer) *Reasoner {
	return &Reasoner{llm: client}
}

const reasoningSystemPrompt = "You are an autonomous development agent reasoning through a problem."

// Reason thinks through query and returns a conclusion with confidence
// proportional to reasoning depth.
func (r *Reasoner) Reason(ctx context.Context, query string) (ReasoningResult, error) {
	steps, conclusion := r.generateChain(ctx, query)

	if conclusion == "" {
		conclusion = "Unable to reach conclusion"
	}
	confidence := 0.5 + float64(len(steps))*0.1
	if confidence > 0.9 {
		confidence = 0.9
	}

	return ReasoningResult{
		Conclusion:     conclusion,
		Confidence:     confidence,
		ChainOfThought: steps,
	}, nil
}

func (r *Reasoner) generateChain(ctx context.Context, problem string) (steps []string, conclusion string) {
	if r.llm != nil {
		prompt := fmt.Sprintf(`Think through this problem step by step:

%s

For each step:
1. State what you're considering
2. Analyze the implications
3. Draw intermediate conclusions

Finally, provide your conclusion.`, problem)

		response, err := r.llm.Complete(ctx, prompt, reasoningSystemPrompt)
		if err == nil {
			for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if strings.Contains(strings.ToLower(line), "conclusion") {
					conclusion = line
				} else {
					steps = append(steps, line)
				}
			}
			return steps, conclusion
		}
	}

	steps = []string{
		"Analyzing problem: " + problem,
		"Identifying key components and constraints",
		"Evaluating possible approaches",
	}
	return steps, "Further analysis required with LLM"
}
