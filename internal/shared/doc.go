// Package shared holds helpers used by more than one internal package.
//
// The testutil subpackage provides a buffered slog handler with log
// assertions and sample inventory exports for package tests.
package shared
