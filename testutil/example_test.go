package testutil_test

import (
	"fmt"
	"testing"

	"github.com/kbukum/depkit/di"
	"github.com/kbukum/depkit/testutil"
)

// ExampleNewScope demonstrates overriding a dependency for one test
func ExampleNewScope() {
	t := &testing.T{} // In real tests, this comes from the test function

	ctx := testutil.NewScope(t, func(o *di.Overrides) {
		Greeting.Set(o, "hello from example")
	})
	fmt.Println(Greeting.Get(ctx))

	// Output: hello from example
}
