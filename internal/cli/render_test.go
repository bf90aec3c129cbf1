package cli

import (
	"testing"
	"time"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"yieldRange":              "Yield range",
		"factorsInfluencingYield": "Factors influencing yield",
		"advisory":                "Advisory",
		"photoDataUri":            "Photo data uri",
		"messageID":               "Message ID",
		"":                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), in)
	}
}

func TestResultMarkdown(t *testing.T) {
	res := domain.Succeeded("recommend-crop", map[string]any{
		"recommendations": []any{
			map[string]any{"cropType": "Sorghum", "yieldEstimate": "2-3 tons/hectare"},
		},
	})

	assert.Equal(t, "# recommend-crop\n\n"+
		"## Recommendations\n\n"+
		"### 1\n\n"+
		"**Crop type:** Sorghum\n\n"+
		"**Yield estimate:** 2-3 tons/hectare\n\n"+
		"\n", ResultMarkdown(res))
}

func TestResultMarkdown_Failure(t *testing.T) {
	res := domain.ActionResult{
		Action: "send-sms",
		Error: &domain.Failure{
			Kind:    domain.KindValidation,
			Message: "invalid input",
			Fields:  []domain.FieldError{{Field: "phoneNumber", Reason: "does not match pattern"}},
		},
	}

	assert.Equal(t, "# send-sms\n\n**Failed (validation):** invalid input\n- `phoneNumber`: does not match pattern\n", ResultMarkdown(res))
}

func TestConversationMarkdown(t *testing.T) {
	conv := &domain.Conversation{
		ID:        "farm-1",
		UpdatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Messages: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "Hi"},
			{Role: domain.RoleModel, Content: "Hello farmer."},
		},
	}

	assert.Equal(t, "# Conversation farm-1\n\n_Updated 2024-03-01 09:30_\n\n**You:** Hi\n\n**AgriBot:** Hello farmer.\n\n", ConversationMarkdown(conv))
}
