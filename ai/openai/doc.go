// Package openai implements the ai service interfaces against
// OpenAI-compatible HTTP APIs.
//
// The implementations are built on langchaingo and work with any service
// exposing the OpenAI wire format (Azure OpenAI, Ollama, LocalAI, vLLM).
// All constructors take an *ai.Config and return interface types.
package openai
