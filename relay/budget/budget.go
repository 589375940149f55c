package budget

import (
	"github.com/VaDeloitte/test-project-sub002/relay/model"
	"github.com/VaDeloitte/test-project-sub002/relay/tokenizer"
)

// Truncator fits conversation history into a model's context window.
type Truncator struct {
	counter        tokenizer.Counter
	imageTokenCost int
}

// New returns a Truncator. imageTokenCost is the flat charge for every image block,
// since the text encoder cannot measure images.
func New(counter tokenizer.Counter, imageTokenCost int) *Truncator {
	return &Truncator{counter: counter, imageTokenCost: max(imageTokenCost, 0)}
}

// MessageTokens is the budget cost of one message: the tokens of its text
// plus imageTokenCost per image block.
func (t *Truncator) MessageTokens(m model.Message) int {
	return t.counter.Count(m.Content.Text()) + m.Content.ImageCount()*t.imageTokenCost
}

// Truncate keeps the longest run of most recent messages whose cost fits in
// tokenLimit - tokens(systemPrompt) - reservedMargin. The scan runs newest first and
// stops at the first message that does not fit; the result is in chronological order.
// The result may hold no messages at all.
func (t *Truncator) Truncate(systemPrompt string, messages []model.Message, spec model.ModelSpec, reservedMargin int) *model.TruncatedRequest {
	promptTokens := t.counter.Count(systemPrompt)
	out := &model.TruncatedRequest{
		SystemPrompt: systemPrompt,
		PromptTokens: promptTokens,
		Budget:       spec.TokenLimit - promptTokens - reservedMargin,
		Messages:     []model.Message{},
	}

	start := len(messages)
	used := 0
	for i := len(messages) - 1; i >= 0; i-- {
		cost := t.MessageTokens(messages[i])
		if used+cost > out.Budget {
			break
		}
		used += cost
		start = i
	}

	out.Messages = append(out.Messages, messages[start:]...)
	out.MessageTokens = used
	out.Dropped = start
	return out
}
