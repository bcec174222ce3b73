//go:build tools
// +build tools

// Package tools pins the code generator and the linter used by the build.
package tools

import (
	// Linter
	_ "golang.org/x/lint/golint"

	// Dependency Injection
	_ "github.com/google/wire/cmd/wire"
)
