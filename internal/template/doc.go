// Package template turns a release of the template repository into a
// scaffolded project directory. It resolves which packaged asset matches an
// (assistant, script type) pair, downloads it with size verification, and
// extracts it through a staging directory so a failed install never leaves
// the target half-written.
package template
