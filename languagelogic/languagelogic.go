package languagelogic

import (
	"context"
	"strings"

	"github.com/nullmodel/llmvm/vmcore"
)

// Models names the text and embedding models a call should use; kept
// together since the executor threads the same pair through every
// semantic instruction for the lifetime of a run.
type Models struct {
	Text      string
	Embedding string
}

// String composes a chat completion from the fixed system message, the
// context stack in order, and a final user message holding prompt, and
// returns the first choice's content trimmed and with embedded newlines
// removed (spec.md §4.5).
func String(ctx context.Context, client LLMClient, models Models, prompt string, stack []vmcore.ContextMessage) (string, error) {
	messages := make([]vmcore.ContextMessage, 0, len(stack)+2)
	messages = append(messages, vmcore.ContextMessage{Role: "system", Content: SystemMessage})
	messages = append(messages, stack...)
	messages = append(messages, vmcore.ContextMessage{Role: "user", Content: prompt})

	content, err := client.ChatCompletion(ctx, models.Text, messages, DefaultSampler())
	if err != nil {
		return "", err
	}

	content = strings.ReplaceAll(content, "\n", "")
	return strings.TrimSpace(content), nil
}

// CosineSimilarity embeds a and b, computes their cosine similarity, clamps
// it to [0,1], scales to a percentage and rounds to the nearest integer.
func CosineSimilarity(ctx context.Context, client LLMClient, embeddingModel string, a, b string) (uint32, error) {
	c, err := cosineSimilarityFloat(ctx, client, embeddingModel, a, b)
	if err != nil {
		return 0, err
	}
	return percentScore(c), nil
}

func cosineSimilarityFloat(ctx context.Context, client LLMClient, embeddingModel string, a, b string) (float64, error) {
	va, err := client.Embedding(ctx, embeddingModel, a)
	if err != nil {
		return 0, err
	}
	vb, err := client.Embedding(ctx, embeddingModel, b)
	if err != nil {
		return 0, err
	}
	return cosine(va, vb), nil
}

// Boolean calls String with prompt, then compares the lowercased result
// against the lowercased positive and negative anchor sets by cosine
// similarity, returning 100 if the best positive match strictly beats the
// best negative match, else 0 (spec.md §4.5).
func Boolean(ctx context.Context, client LLMClient, models Models, prompt string, trueAnchors, falseAnchors []string, stack []vmcore.ContextMessage) (uint32, error) {
	result, err := String(ctx, client, models, prompt, stack)
	if err != nil {
		return 0, err
	}
	result = strings.ToLower(result)

	bestTrue, err := maxSimilarity(ctx, client, models.Embedding, result, trueAnchors)
	if err != nil {
		return 0, err
	}
	bestFalse, err := maxSimilarity(ctx, client, models.Embedding, result, falseAnchors)
	if err != nil {
		return 0, err
	}

	if bestTrue > bestFalse {
		return 100, nil
	}
	return 0, nil
}

func maxSimilarity(ctx context.Context, client LLMClient, embeddingModel string, text string, anchors []string) (float64, error) {
	var best float64
	first := true
	for _, anchor := range anchors {
		c, err := cosineSimilarityFloat(ctx, client, embeddingModel, text, strings.ToLower(anchor))
		if err != nil {
			return 0, err
		}
		if first || c > best {
			best = c
			first = false
		}
	}
	return best, nil
}
