package loam

// PromptMetadata is the frontmatter of a prompt document.
// The document body is the Go text/template of the instruction.
type PromptMetadata struct {
	// Action names the action the prompt replaces. Defaults to the file name.
	Action      string `json:"action" mapstructure:"action"`
	Description string `json:"description" mapstructure:"description"`
}
