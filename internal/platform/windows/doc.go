// Package windows implements the platform backends against user32 and
// gdi32. On other platforms the package is empty and registers nothing.
package windows
