// Package summarizer turns a health report into a short operator-facing
// narrative using an OpenAI-compatible chat completions API.
//
// Explain never forwards oversized input: each object is serialized on its own
// and rejected locally with ErrPayloadTooLarge above MaxObjectChars. When no
// credential is configured Explain returns ErrNotConfigured and callers reply
// with Placeholder instead. Upstream errors are wrapped in ErrUpstream; their
// detail belongs in logs, not in responses.
package summarizer
