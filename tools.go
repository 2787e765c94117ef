//go:build tools

package main

// Pins the mock generator used by the go:generate directives under
// internal/repositories/repository_mocks and internal/services/service_mocks.
import (
	_ "github.com/golang/mock/mockgen"
)
