// Package model defines the data structures shared across sitequery:
// crawled pages, their link graphs, and query reports.
//
// Types in this package are plain data with small helper methods and no
// I/O. The crawl engine constructs Pages, the answer engine reads them,
// and the report writers serialize them.
package model
