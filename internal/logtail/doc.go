// Package logtail reads the end of crown's log file for the Logs view.
//
// Read keeps a ring buffer of the last N lines, so memory stays bounded
// however large the file grows. Parse splits each line into the standard
// logger's timestamp and message and assigns a coarse Level the UI uses to
// pick a color.
package logtail
