package languagelogic

import "strings"

// SystemMessage is the fixed system prompt prepended to every chat
// completion call (spec.md §4.5).
const SystemMessage = "Provide exactly the requested output. Follow structural markers strictly."

// Micro-prompt templates, verbatim from spec.md §6.4. {v} is replaced with
// the source register's text.
const (
	morphTemplate     = "Rewrite to exactly match this template:\n{v}\n\nAnswer only:"
	projectTemplate   = "What happens next if:\n{v}\n\nPrediction only:"
	distillTemplate   = "Extract only the exact information here:\n{v}\n\nShort answer only:"
	correlateTemplate = "Compare with:\n{v}\nHow are they similar or different?\n\nAnswer only:"
	auditTemplate     = "Does the it follow the rule:\n{v}\nAnswer with exactly one word: YES or NO.\n\nAnswer only:"
)

func fillTemplate(template, v string) string {
	return strings.ReplaceAll(template, "{v}", v)
}

// MorphPrompt builds the Morph micro-prompt for v.
func MorphPrompt(v string) string { return fillTemplate(morphTemplate, v) }

// ProjectPrompt builds the Project micro-prompt for v.
func ProjectPrompt(v string) string { return fillTemplate(projectTemplate, v) }

// DistillPrompt builds the Distill micro-prompt for v.
func DistillPrompt(v string) string { return fillTemplate(distillTemplate, v) }

// CorrelatePrompt builds the Correlate micro-prompt for v.
func CorrelatePrompt(v string) string { return fillTemplate(correlateTemplate, v) }

// AuditPrompt builds the Audit micro-prompt for v.
func AuditPrompt(v string) string { return fillTemplate(auditTemplate, v) }
