//go:build tools

package tools

// Mocks in pkg/remote/mocks are generated from .mockery.yaml:
//
//	go run github.com/vektra/mockery/v2
import (
	_ "github.com/vektra/mockery/v2"
)
