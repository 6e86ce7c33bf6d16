// Package onimpl implements the on_unimplemented directive machinery:
// parsing the attribute's nested items into a directive tree, validating
// and rendering the message/label format templates, and resolving which
// rule applies for a concrete trait reference.
package onimpl
