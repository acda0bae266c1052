// Package schema generates document shape descriptors from Go struct tags.
// Descriptors drive required-field and enum validation after candidate
// selection and can be rendered as format instructions for a prompt.
package schema
