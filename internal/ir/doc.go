// Package ir provides the intermediate representation of figure specs.
//
// Figure specs are written in CUE and compiled by internal/compiler into the
// types here; internal/render consumes them. This package contains type
// definitions and small pure helpers only. It imports nothing internal, so
// every other package may depend on it.
//
// Key conventions:
//   - All JSON tags use snake_case
//   - Zero values mean "unset"; Defaults fills them in
//   - Text fields may contain {placeholders}, see Expand
//   - Tags and labels are compared after NFC normalization, see Normalize
package ir
