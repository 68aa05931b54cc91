// Package answer turns crawled pages into human-readable answers.
//
// The engine routes a free-form prompt through an ordered rule table:
// a Google Scholar link finder, a heuristic publication extractor, and a
// generic page-summary fallback. Rules are tried top to bottom and the
// first match wins, so every prompt yields an answer. The heuristics work
// purely on the crawled text and link graph; no external services are
// consulted.
package answer
