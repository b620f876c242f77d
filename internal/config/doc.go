// Package config reads plugin options from YAML files or host-built values,
// normalizes legacy spellings and validates the result. Normalization is a
// pure function returning warnings instead of logging them.
package config
