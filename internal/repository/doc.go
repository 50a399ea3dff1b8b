// Package repository converts between raw result rows and domain models for
// the todos and tasks tables. All SQL lives here, built by the generators in
// sql.go with positional placeholders; repositories never interpolate values
// into query text. Conversion failures surface as *MappingError, and lookups
// on absent ids return (nil, nil) rather than an error.
package repository
