// Package tabular provides the file backed record source, record sink and
// text store used by the migration commands.
package tabular
