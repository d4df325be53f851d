package llm

import (
	"bufio"
	"strings"

	"safebite/internal/domain"
	"safebite/internal/port"
)

// ParseAdvice reads the Verdict/Allergens/Explanation lines of a provider
// answer. When no Explanation line is present the whole answer becomes the
// explanation and no hint is reported.
func ParseAdvice(text, model string) *port.ExplainOutput {
	out := &port.ExplainOutput{Model: model}

	var (
		hint        *domain.VerdictLabel
		explanation []string
		inExplain   bool
		sawExplain  bool
	)
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(strings.Trim(sc.Text(), "*"))
		key, value, ok := splitField(line)
		switch {
		case ok && key == "verdict":
			inExplain = false
			hint = parseHint(value)
		case ok && key == "allergens":
			inExplain = false
			out.Allergens = parseList(value)
		case ok && key == "explanation":
			inExplain, sawExplain = true, true
			if value != "" {
				explanation = append(explanation, value)
			}
		case inExplain && line != "":
			explanation = append(explanation, line)
		}
	}

	if !sawExplain {
		out.Explanation = strings.TrimSpace(text)
		out.Allergens = nil
		return out
	}
	out.VerdictHint = hint
	out.Explanation = strings.Join(explanation, " ")
	return out
}

func splitField(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.ToLower(strings.TrimSpace(strings.Trim(line[:idx], "*")))
	return key, strings.TrimSpace(strings.Trim(line[idx+1:], "* ")), true
}

func parseHint(value string) *domain.VerdictLabel {
	var label domain.VerdictLabel
	switch strings.ToLower(strings.Trim(value, ". ")) {
	case "safe":
		label = domain.VerdictSafe
	case "unsafe", "not safe":
		label = domain.VerdictUnsafe
	case "uncertain", "unknown":
		label = domain.VerdictUncertain
	default:
		return nil
	}
	return &label
}

func parseList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(strings.Trim(part, ". "))
		if part == "" || strings.EqualFold(part, "none") {
			continue
		}
		out = append(out, part)
	}
	return out
}
