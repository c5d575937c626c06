package querygen

import (
	"fmt"
	"strings"

	"github.com/antigravity-dev/fundscout/internal/model"
)

// naturalLanguageBackends lists backend identifiers that expect a
// conversational research prompt rather than a bare keyword query.
// "ai_prompted_research" is the only such backend in this spec's fixed
// backend set (built by searchfanout.NewAIPromptedResearchBackend); everything else
// gets the terse keyword-search style.
var naturalLanguageBackends = map[string]bool{
	"ai_prompted_research": true,
}

// BuildPrompt composes the prompt sent to the LLM, following
// internal/scheduler/prompt.go's strings.Builder assembly style: backend
// style header, gathered keywords, geography, and an explicit request for
// exactly numberOfQueries distinct queries.
func BuildPrompt(req model.QueryRequest, keywords []string, numberOfQueries int) string {
	var b strings.Builder

	if naturalLanguageBackends[req.SearchBackend] {
		b.WriteString("Write natural-language research questions, not bare keywords.\n\n")
	} else {
		b.WriteString("Write concise keyword-style search queries.\n\n")
	}

	fmt.Fprintf(&b, "Topic keywords: %s\n", strings.Join(keywords, ", "))
	fmt.Fprintf(&b, "Geographic focus: %s\n\n", req.GeographicScope.Label)

	fmt.Fprintf(&b, "Produce exactly %d distinct search queries, one per line, with no numbering or commentary.\n", numberOfQueries)

	return b.String()
}
