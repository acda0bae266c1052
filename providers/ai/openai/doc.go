// Package openai implements the ai.Provider interface against any
// OpenAI-compatible chat-completions endpoint.
package openai
