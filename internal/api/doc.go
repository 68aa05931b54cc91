// Package api exposes the crawler and answer engine over HTTP.
//
// The server offers four endpoints: GET /health for liveness, GET
// /site-map to crawl a site and return its page and link graph, POST
// /query to crawl and answer a prompt, and GET /history to browse stored
// results when a history database is configured. Each request triggers a
// fresh crawl; nothing is cached between requests.
package api
