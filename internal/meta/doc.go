// Package meta models nested attribute arguments: the items inside
// `name(...)` attribute values, a small scanner/parser from attribute
// text to items, and the boolean condition evaluator that runs over
// item trees.
package meta
