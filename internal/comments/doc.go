// Package comments rewrites the permalinks of a comment export so they point
// at the date-partitioned paths of the migrated posts.
package comments
