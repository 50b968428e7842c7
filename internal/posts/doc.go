// Package posts applies the per-row rewrite rules of the migration to posts
// read from the legacy export.
package posts
