// Package normalize strips formatting markup from model output before
// structured extraction: markdown to plain text, and HTML to markdown for
// models that answer in HTML.
package normalize
