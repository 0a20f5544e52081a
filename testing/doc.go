// Package testing provides testing utilities for code built on the yadisk client.
//
// # Mocks
//
// The mocks subpackage provides testify-based mock implementations of the
// transport interface (http.Session), so request dispatch, transfers and
// operation polling can be tested without a network.
//
// # Fixtures
//
// The fixtures subpackage builds canned API responses: JSON bodies, vendor
// error bodies, operation links and transfer links.
//
// # Usage
//
//	import (
//		"github.com/ivknv/yadisk-go/testing/mocks"
//		"github.com/ivknv/yadisk-go/testing/fixtures"
//	)
package testing
