package plan

import (
	"fmt"
	"strings"
)

// RetryPrompt deterministically renders a correction instruction from a
// list of validation errors. The orchestrator appends it as a follow-up
// user message when a response failed validation and retries remain.
func RetryPrompt(errs []ValidationError) string {
	var b strings.Builder

	b.WriteString("The previous response had validation errors:\n")
	for _, e := range errs {
		fmt.Fprintf(&b, "- %s: %s", e.Path, e.Message)
		if e.Expected != "" {
			fmt.Fprintf(&b, " (expected %s", e.Expected)
			if e.Received != "" {
				fmt.Fprintf(&b, ", received %s", e.Received)
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	b.WriteString("Please fix every error listed above and resend the complete plan as valid JSON only, with no surrounding prose.")

	return b.String()
}
