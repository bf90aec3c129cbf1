// Package actions defines the built-in AgriMind actions: yield prediction,
// crop recommendation, pest detection, local advisories, weather forecasts,
// SMS notifications and the AgriBot chat.
//
// Instruction templates are embedded from prompts/ and can be replaced per
// action through a ports.PromptSource.
package actions
