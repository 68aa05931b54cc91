// Package database persists completed query reports in SQLite.
//
// The history database stores finished results only. Crawls never consult
// it: traversal state lives in memory for the duration of a single crawl
// and is thrown away afterwards. The database exists so past answers and
// site maps can be listed and re-read without crawling again.
package database
