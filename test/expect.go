package test

import (
	"fmt"
	"math"
	"testing"
)

// id returns a prefix for failure messages built from the optional tags
func id(tags ...any) string {
	if len(tags) == 0 {
		return ""
	}
	return fmt.Sprintf("%v: ", tags)
}

// ExpectEquality is used to test equality between one value and another
func ExpectEquality[T comparable](t *testing.T, v T, expectedValue T, tags ...any) bool {
	t.Helper()
	if v != expectedValue {
		t.Errorf("%sequality test of type %T failed: '%v' does not equal '%v'", id(tags...), v, v, expectedValue)
		return false
	}
	return true
}

// ExpectInequality is used to test inequality between one value and another. In
// other words, the test does not want the values to be equal
func ExpectInequality[T comparable](t *testing.T, v T, notExpectedValue T, tags ...any) bool {
	t.Helper()
	if v == notExpectedValue {
		t.Errorf("%sinequality test of type %T failed: '%v' does equal '%v'", id(tags...), v, v, notExpectedValue)
		return false
	}
	return true
}

// ExpectApproximate is used to test approximate equality between one value
// and another. Tolerance is a fraction of the expected value
func ExpectApproximate[T ~int | ~float32 | ~float64](t *testing.T, v T, expectedValue T, tolerance float64, tags ...any) bool {
	t.Helper()
	top := float64(expectedValue) * (1 + tolerance)
	bot := float64(expectedValue) * (1 - tolerance)
	if float64(v) < math.Min(top, bot) || float64(v) > math.Max(top, bot) {
		t.Errorf("%sapproximation test of type %T failed: '%v' is outside the range '%v' to '%v'", id(tags...), v, v, bot, top)
		return false
	}
	return true
}

// expect returns true if v is a success value for its type
//
//	bool -> bool == true
//	error -> error == nil
//	nil -> always true
func expect(t *testing.T, v any, tags ...any) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		return v
	case error:
		return v == nil
	case nil:
		return true
	default:
		t.Fatalf("%sunsupported type %T for expectation testing", id(tags...), v)
	}

	return false
}

// ExpectFailure tests argument v for a failure condition suitable for its
// type. Currently supported types:
//
//	bool -> bool == false
//	error -> error != nil
//
// If type is nil then the test will fail
func ExpectFailure(t *testing.T, v any, tags ...any) bool {
	t.Helper()
	if expect(t, v, tags...) {
		t.Errorf("%sa failure value is expected for type %T", id(tags...), v)
		return false
	}
	return true
}

// ExpectSuccess tests argument v for a success condition suitable for its
// type. Currently supported types:
//
//	bool -> bool == true
//	error -> error == nil
//
// If type is nil then the test will succeed
func ExpectSuccess(t *testing.T, v any, tags ...any) bool {
	t.Helper()
	if !expect(t, v, tags...) {
		if err, ok := v.(error); ok {
			t.Errorf("%sa success value is expected for type %T: %v", id(tags...), v, err)
		} else {
			t.Errorf("%sa success value is expected for type %T", id(tags...), v)
		}
		return false
	}
	return true
}
