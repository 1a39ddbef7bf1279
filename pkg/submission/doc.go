// Package submission turns a submitted form into a JSON-ready result.
//
// Entries arrive as ordered name/value pairs, duplicates included, exactly as
// a browser serializes them. Collect merges them into a Result keyed by field
// name: names seen once keep a scalar string, repeated names (checkbox
// groups, multi-selects) keep every value as an ordered list. Keys preserve
// first-occurrence order so the rendered JSON reads like the form.
//
// The decoding helpers read urlencoded and multipart bodies without going
// through url.Values, which would discard the order of field names.
package submission
