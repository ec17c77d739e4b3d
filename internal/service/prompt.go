package service

import (
	"fmt"
	"strings"

	"github.com/katakuxiko/polity-linker/internal/model"
)

const promptHeader = `You are a UPSC Polity expert. Below are passages from a polity textbook that mention the concept "%s".
Synthesize them into one holistic, linked study note.

Instructions:
- Use simple, clear, high-yield language.
- Preserve the constitutional meaning and its nuances.
- Explain how the concept connects across chapters (e.g. Executive vs Legislature).
- Use only the material below.

Material:
`

const promptFooter = `
Format the output in Markdown with these sections:
1. Holistic Overview
2. Key Linkages (connecting the dots across chapters)
3. Quick Recall (short bullet points for Prelims/Mains)
`

// BuildPrompt embeds the concept and every passage, labelled by chapter.
func BuildPrompt(concept string, matches []model.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptHeader, concept)
	for i, m := range matches {
		fmt.Fprintf(&b, "\n[%d] (%s)\n%s\n", i+1, m.Chapter, m.Text)
	}
	b.WriteString(promptFooter)
	return b.String()
}
