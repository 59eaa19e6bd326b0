// Package language normalizes stream language tags.
//
// Containers label streams with ISO 639-1, ISO 639-2/T, or ISO 639-2/B codes.
// Canonical maps all of them to a single ISO 639-2/T code using
// golang.org/x/text/language and reports unknown or undetermined input as the
// empty string.
package language
