package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
)

// Mask replaces every PII match.
const Mask = "***"

// DefaultPIIPatterns match e-mail addresses and phone numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d\s().-]{6,}\d`,
}

type piiMiddleware struct {
	next     ports.ConversationStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks every match of the
// patterns in message content before it is stored. Nil patterns means
// DefaultPIIPatterns. It panics if a pattern does not compile.
func NewPIIMiddleware(patternStrings []string) Middleware {
	if patternStrings == nil {
		patternStrings = DefaultPIIPatterns
	}
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ConversationStore) ports.ConversationStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, conv *domain.Conversation) error {
	// The caller keeps the unmasked history in memory.
	cloned := conv.Clone()
	for i := range cloned.Messages {
		cloned.Messages[i].Content = m.mask(cloned.Messages[i].Content)
	}
	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
