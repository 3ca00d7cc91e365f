package uitest

import (
	"testing"

	"github.com/qaforge/uiharness/framework/uitest/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStacktrace(t *testing.T) {
	_ = Run(TestConfiguration{}, func(ut *T) {
		ut.Run("without filtering", func(ut *T) {
			stack := getStacktrace(true, nil)
			assert.Greater(t, len(stack), 1)
			assert.Equal(t, currentPackageName(), stack[0].Package)
			assert.Contains(t, stack[0].Function, "TestStacktrace.")
			assert.Equal(t, currentPackageName(), stack[1].Package)
			assert.Equal(t, "(*T).run", stack[1].Function)
		})

		ut.Run("auto-filtering removes runner methods", func(ut *T) {
			internal.RunAction(func() {
				stack := getStacktrace(false, nil)
				assert.Len(t, stack, 1)
				// Everything in this package (including this test) and the Go runtime
				// frames below ut.Run are stripped out, leaving only internal.RunAction.
				assert.Equal(t, currentPackageName()+"/internal", stack[0].Package)
				assert.Equal(t, "RunAction", stack[0].Function)
			})
		})

		ut.Run("filter out designated helpers", func(ut *T) {
			helperFunc1(func() {
				helperFunc2(func() {
					stack := getStacktrace(true, []string{currentPackageName() + ".helperFunc2"})
					foundFunc1 := false
					for _, s := range stack {
						if s.Package == currentPackageName() && s.Function == "helperFunc1" {
							foundFunc1 = true
						} else if s.Package == currentPackageName() && s.Function == "helperFunc2" {
							require.Fail(t, "helperFunc2 should not have been in stacktrace", "stacktrace: %+v", stack)
						}
					}
					assert.True(t, foundFunc1, "helperFunc1 should have been in stacktrace but wasn't", "stacktrace: %+v", stack)
				})
			})
		})
	})
}

func helperFunc1(action func()) {
	action()
}

func helperFunc2(action func()) {
	action()
}

func TestTransformErrorStripsTestifyTrace(t *testing.T) {
	err := transformError(assertionError(), nil)
	assert.Equal(t, "values are not equal", err.Error())
}

func assertionError() error {
	return &fakeTestifyError{}
}

type fakeTestifyError struct{}

func (e *fakeTestifyError) Error() string {
	return "\n\tError Trace:\tpage.go:10\n\t            \tpage.go:20\n\tError:      \tvalues are not equal"
}
