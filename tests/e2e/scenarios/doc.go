// Package scenarios contains end-to-end tests that exercise the whole
// pipeline: suite execution against a stub meal service, persistence to
// the history store, and readiness waiting.
package scenarios
