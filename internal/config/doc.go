// Package config provides configuration structures and utilities for
// sitequery. It defines crawl budgets, politeness settings, report
// preferences, and per-host overrides loaded from the .sitequery file.
package config
