// Package rendition turns a template config and a section content map into a
// presentation artifact.
//
// The builder writes a single-slide .pptx archive directly as OOXML parts:
// each template section becomes a positioned text frame, content rules are
// enforced by truncating with a visible marker, and branding applies across
// all sections. Required sections without content abort the build with a
// per-section completeness error unless partial output is allowed.
//
// The build is a pure function of its inputs. Archive parts are written in a
// fixed order with zero timestamps, so identical inputs produce identical
// bytes.
package rendition
