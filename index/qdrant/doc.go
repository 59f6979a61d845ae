// Package qdrant implements index.Manager on a Qdrant collection over gRPC.
//
// Records map to points: the deterministic record id becomes the numeric
// point id, the content vector becomes the point vector under a cosine
// distance profile, and title, content, and facet fields are stored as
// payload. Facet filters translate to server-side must-clause filters;
// the keyword boost is applied client-side over an oversampled result set.
package qdrant
