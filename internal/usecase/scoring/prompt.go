package scoring

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/matchmaker/internal/domain/entity"
)

// BuildPrompt renders the matchmaker instructions for a pair of profiles.
// The output contract asks for aiScore and conversation starters.
func BuildPrompt(a, b entity.Entity) string {
	var sb strings.Builder

	sb.WriteString("You are a thoughtful and creative matchmaker for a niche, artistic social app.\n")
	sb.WriteString("Analyze two user profiles and write a short summary of why they might connect.\n")
	sb.WriteString("Also give a compatibility score and suggest conversation starters.\n\n")

	writeProfile(&sb, "User A", a)
	writeProfile(&sb, "User B", b)

	sb.WriteString("Steps:\n")
	sb.WriteString("1. Find commonalities: shared traits and recurring themes in their own words.\n")
	sb.WriteString("2. Find complementary pairs, such as a storyteller and a listener.\n")
	sb.WriteString("3. Write a 2-3 sentence summary of their potential connection. Do not just list traits.\n")
	sb.WriteString("4. Give a holistic compatibility score from 0 to 100; higher means a stronger connection.\n")
	sb.WriteString("5. Write two open-ended questions one user could ask the other.\n\n")

	sb.WriteString("Respond with a single valid JSON object and nothing else, shaped like:\n")
	sb.WriteString("```json\n")
	sb.WriteString(`{"summary": "string", "aiScore": 0, "conversationStarters": ["string", "string"]}`)
	sb.WriteString("\n```\n")

	return sb.String()
}

func writeProfile(sb *strings.Builder, label string, e entity.Entity) {
	fmt.Fprintf(sb, "%s:\n", label)
	fmt.Fprintf(sb, "- Traits: %s\n", strings.Join(e.Traits(), ", "))
	fmt.Fprintf(sb, "- Their own words: %q\n\n", e.FreeText())
}
