// Package deps reports whether the external chart tools are installed.
package deps
