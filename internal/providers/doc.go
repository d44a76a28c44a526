// Package providers implements the Vision interface for each supported
// vision-capable LLM provider.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT, through go-openai),
// Google (Gemini), and Ollama / LM Studio for local vision models.
//
// All providers share a common retry helper with exponential back-off for
// rate limits and server errors. Authentication failures are never retried;
// use [IsAuthError] to detect them. When a model catalog entry lists several
// model IDs, [New] wraps one client per ID in a [Fallback] that tries them in
// order.
package providers
