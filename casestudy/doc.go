// Package casestudy implements the structured content pipeline for case
// study documents.
//
// Three chained stages talk to a single chat model under a fixed, versioned
// prompt contract: Extract structures raw text into the template's section
// keys, Validate scores the content against the template rules, and Enhance
// rewrites it when the score falls below the acceptance threshold. Every
// stage enforces a strict JSON response contract and rejects responses that
// stray from the requested key set.
//
// Validation verdicts are append-only: each run stores a new result and the
// latest per document version wins for display.
//
// The Generator covers the wizard path: user-supplied content, optional
// enhancement, deck rendition, blob upload, and a fresh catalog entry.
package casestudy
