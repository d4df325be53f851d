package llm

import (
	"fmt"
	"strings"

	"safebite/internal/port"
)

// BuildAdvicePrompt asks for a verdict in three fixed lines so the answer
// can be read without interpreting free text.
func BuildAdvicePrompt(input port.ExplainInput) string {
	allergens := "none"
	if len(input.Allergens) > 0 {
		allergens = strings.Join(input.Allergens, ", ")
	}
	return fmt.Sprintf(`A user is allergic to: %s.
They want to know whether this product is safe to eat: %q.

Only name allergens from the user's list that the product typically or certainly contains.
Answer in exactly this format and nothing else:
Verdict: <Safe, Unsafe or Uncertain>
Allergens: <comma-separated allergens from the user's list, or none>
Explanation: <one or two sentences>`, allergens, input.Product)
}

// BuildExtractionPrompt asks for the ingredient text printed on a label.
func BuildExtractionPrompt() string {
	return `Extract the ingredient list and any allergen statements ("contains", "may contain") from this product label.
Return the text exactly as printed, one ingredient per line, with no commentary, headings or formatting.
If the label has no ingredient information, return an empty response.`
}
