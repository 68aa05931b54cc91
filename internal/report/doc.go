// Package report renders query results for humans and machines.
//
// Three writers implement the same interface: SimpleWriter for terminal
// output, JSONWriter for tool integration, and MarkdownWriter for
// documentation. MultiWriter fans one report out to several destinations,
// such as the terminal and a file, in a single call.
package report
