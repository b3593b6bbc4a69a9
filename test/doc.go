// Package test bundles helper functions that remove common boilerplate from
// tests written for the standard go test harness.
//
// The Expect functions report a failure with t.Errorf() and allow the test to
// continue. The Demand functions use t.Fatalf() and should be used when later
// parts of the test depend on the value being correct.
//
// It is worth describing how the ExpectSuccess() and ExpectFailure()
// functions handle the nil type because it is not obvious. The nil type is
// considered a success and consequently will cause ExpectFailure() to fail and
// ExpectSuccess() to succeed. Because of how errors usually work (nil to
// indicate no error) we need to interpret nil in this way.
//
// The CompareWriter type implements the io.Writer interface and should be used
// to capture output for later comparison.
package test
