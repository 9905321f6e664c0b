package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed prompts/dedup.md
var dedupPromptRaw string

//go:embed prompts/eligibility.md
var eligibilityPromptRaw string

// Parsed once at package init; reused on every call.
var (
	dedupTemplate       = template.Must(template.New("dedup").Parse(dedupPromptRaw))
	eligibilityTemplate = template.Must(template.New("eligibility").Parse(eligibilityPromptRaw))
)

type promptData struct {
	Count int
	Max   int
}

// DedupPrompt renders the system instruction for duplicate detection over
// count listings.
func DedupPrompt(count int) (string, error) {
	return render(dedupTemplate, count)
}

// EligibilityPrompt renders the system instruction for eligibility
// classification over count listings.
func EligibilityPrompt(count int) (string, error) {
	return render(eligibilityTemplate, count)
}

func render(t *template.Template, count int) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, promptData{Count: count, Max: count - 1}); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
