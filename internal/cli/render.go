package cli

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/aretw0/agrimind/pkg/domain"
)

// ResultMarkdown renders an invocation result for reading in a terminal.
func ResultMarkdown(res domain.ActionResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", res.Action)
	if !res.OK() {
		fmt.Fprintf(&sb, "**Failed (%s):** %s\n", res.Error.Kind, res.Error.Message)
		for _, f := range res.Error.Fields {
			fmt.Fprintf(&sb, "- `%s`: %s\n", f.Field, f.Reason)
		}
		return sb.String()
	}
	writeRecord(&sb, res.Output, 2)
	return sb.String()
}

func writeRecord(sb *strings.Builder, record map[string]any, depth int) {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		switch v := record[k].(type) {
		case map[string]any:
			fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", depth), Label(k))
			writeRecord(sb, v, depth+1)
		case []any:
			fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", depth), Label(k))
			for i, item := range v {
				if rec, ok := item.(map[string]any); ok {
					fmt.Fprintf(sb, "%s %d\n\n", strings.Repeat("#", depth+1), i+1)
					writeRecord(sb, rec, depth+2)
					continue
				}
				fmt.Fprintf(sb, "- %v\n", item)
			}
			sb.WriteString("\n")
		default:
			fmt.Fprintf(sb, "**%s:** %v\n\n", Label(k), v)
		}
	}
}

// Label turns a camelCase field name into words: yieldRange → Yield range.
func Label(field string) string {
	if field == "" {
		return ""
	}
	runes := []rune(field)
	var words []string
	begin := 0
	for i := 1; i < len(runes); i++ {
		lowerToUpper := unicode.IsLower(runes[i-1]) && unicode.IsUpper(runes[i])
		acronymEnd := unicode.IsUpper(runes[i-1]) && unicode.IsUpper(runes[i]) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if lowerToUpper || acronymEnd {
			words = append(words, string(runes[begin:i]))
			begin = i
		}
	}
	words = append(words, string(runes[begin:]))

	for i, w := range words {
		r := []rune(w)
		if i == 0 {
			r[0] = unicode.ToUpper(r[0])
		} else if len(r) > 1 && unicode.IsLower(r[1]) {
			r[0] = unicode.ToLower(r[0])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ConversationMarkdown renders a stored conversation as a transcript.
func ConversationMarkdown(conv *domain.Conversation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Conversation %s\n\n", conv.ID)
	if !conv.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "_Updated %s_\n\n", conv.UpdatedAt.Format("2006-01-02 15:04"))
	}
	for _, m := range conv.Messages {
		speaker := "You"
		if m.Role == domain.RoleModel {
			speaker = "AgriBot"
		}
		fmt.Fprintf(&sb, "**%s:** %s\n\n", speaker, m.Content)
	}
	return sb.String()
}
