// Package main provides the entry point for the sitequery CLI.
//
// sitequery crawls a single web site breadth-first within a bounded page
// budget and answers natural-language prompts about it with lightweight
// heuristics (publication extraction, Google Scholar link discovery).
//
// Usage:
//
//	sitequery crawl <url>
//	sitequery query <url> --prompt "list publications"
//	sitequery serve
//
// See --help for all available options.
package main

// main is the entry point for sitequery.
func main() {
	Execute()
}
