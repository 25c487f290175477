// Package copier recursively copies a directory tree onto a destination
// directory, merging into whatever already exists there. Failures are
// reported as *Error values carrying a Kind so callers can tell input,
// permission, resource and conflict failures apart before rendering them
// as text.
package copier
