// Package ui holds the lipgloss palette used by the CLI layer to render
// command plans: section headings, command lines, warnings for unresolved
// applications, and manual install guidance.
package ui
