package uitest

import (
	"testing"

	"github.com/qaforge/uiharness/framework"

	"github.com/stretchr/testify/assert"
)

func TestTestScopeInheritsConfiguration(t *testing.T) {
	myContextValue := "hi"
	myCapabilities := []string{"a", "b"}
	config := TestConfiguration{
		Context:      myContextValue,
		Capabilities: myCapabilities,
	}
	_ = Run(config, func(ut *T) {
		assert.Equal(t, myContextValue, ut.Context())
		assert.Equal(t, framework.Capabilities(myCapabilities), ut.Capabilities())

		ut.Run("subtest", func(ut1 *T) {
			assert.Equal(t, myContextValue, ut1.Context())
			assert.Equal(t, framework.Capabilities(myCapabilities), ut1.Capabilities())
		})
	})
}

func TestTestScopeExitsImmediatelyOnFailNow(t *testing.T) {
	executed1 := false
	executed2 := false
	executed3 := false
	_ = Run(TestConfiguration{}, func(ut *T) {
		ut.Run("", func(ut *T) {
			executed1 = true
			ut.FailNow()
			executed2 = true
		})
		executed3 = true
	})
	assert.True(t, executed1)
	assert.False(t, executed2)
	assert.True(t, executed3)
}

func TestTestScopeExitsImmediatelyOnSkip(t *testing.T) {
	executed1 := false
	executed2 := false
	executed3 := false
	_ = Run(TestConfiguration{}, func(ut *T) {
		ut.Run("", func(ut *T) {
			executed1 = true
			ut.Skip()
			executed2 = true
		})
		executed3 = true
	})
	assert.True(t, executed1)
	assert.False(t, executed2)
	assert.True(t, executed3)
}

func TestTestScopePassedResult(t *testing.T) {
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("parent", func(ut0 *T) {
			ut0.Run("subtest1", func(ut1 *T) {
				// this test passes
			})
			ut0.Run("subtest2", func(ut2 *T) {
				// this test passes
			})
		})
	})

	assert.True(t, result.OK())
	assert.Len(t, result.Tests, 4)
	assert.Len(t, result.Failures, 0)

	assert.Equal(t, TestID{"parent", "subtest1"}, result.Tests[0].TestID)
	assert.Len(t, result.Tests[0].Errors, 0)

	assert.Equal(t, TestID{"parent", "subtest2"}, result.Tests[1].TestID)
	assert.Len(t, result.Tests[1].Errors, 0)

	assert.Equal(t, TestID{"parent"}, result.Tests[2].TestID)
	assert.Len(t, result.Tests[2].Errors, 0)

	assert.Nil(t, result.Tests[3].TestID)
	assert.Len(t, result.Tests[3].Errors, 0)
}

func TestTestScopeFailedResult(t *testing.T) {
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("parent", func(ut0 *T) {
			ut0.Run("subtest1", func(ut1 *T) {
				// this test passes
			})
			ut0.Run("subtest2", func(ut2 *T) {
				ut2.Errorf("failed because %s", "reasons")
				ut2.Errorf("and failed some more")
			})
			ut0.Errorf("and parent failed")
		})
	})

	assert.False(t, result.OK())
	assert.Len(t, result.Tests, 4)
	assert.Len(t, result.Failures, 2)

	assert.Equal(t, TestID{"parent", "subtest1"}, result.Tests[0].TestID)
	assert.Len(t, result.Tests[0].Errors, 0)

	assert.Equal(t, TestID{"parent", "subtest2"}, result.Tests[1].TestID)
	assert.Len(t, result.Tests[1].Errors, 2)
	assert.Equal(t, "failed because reasons", result.Tests[1].Errors[0].Error())
	assert.Equal(t, "and failed some more", result.Tests[1].Errors[1].Error())

	assert.Equal(t, TestID{"parent"}, result.Tests[2].TestID)
	assert.Len(t, result.Tests[2].Errors, 1)
	assert.Equal(t, "and parent failed", result.Tests[2].Errors[0].Error())

	assert.Nil(t, result.Tests[3].TestID)
	assert.Len(t, result.Tests[3].Errors, 0)
}

func TestTestScopeSkippedResult(t *testing.T) {
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("parent", func(ut0 *T) {
			ut0.Run("subtest1", func(ut1 *T) {
				ut1.Skip()
			})
			ut0.Run("subtest2", func(ut2 *T) {
				ut2.SkipWithReason("why not")
			})
		})
	})

	assert.True(t, result.OK())
	assert.Len(t, result.Tests, 2)
	assert.Len(t, result.Failures, 0)

	assert.Equal(t, TestID{"parent"}, result.Tests[0].TestID)
	assert.Len(t, result.Tests[0].Errors, 0)

	assert.Nil(t, result.Tests[1].TestID)
	assert.Len(t, result.Tests[1].Errors, 0)
}

func TestTestScopeNonCriticalFailure(t *testing.T) {
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("flaky", func(ut0 *T) {
			ut0.NonCritical("known animation timing issue")
			ut0.Errorf("element moved")
		})
	})

	assert.True(t, result.OK())
	assert.Len(t, result.Failures, 0)
	assert.Len(t, result.NonCriticalFailures, 1)
	assert.Equal(t, "known animation timing issue", result.NonCriticalFailures[0].Explanation)
}

func TestTestScopeFilter(t *testing.T) {
	filter := func(id TestID) bool {
		return len(id) == 0 || id[0] == "b"
	}

	result := Run(TestConfiguration{Filter: filter}, func(ut *T) {
		ut.Run("a", func(ut0 *T) {
			ut0.Run("sub1a", func(ut1 *T) {})
			ut0.Run("sub2a", func(ut1 *T) {})
		})
		ut.Run("b", func(ut0 *T) {
			ut0.Run("sub1b", func(ut1 *T) {})
			ut0.Run("sub2b", func(ut1 *T) {})
		})
	})

	assert.True(t, result.OK())
	assert.Len(t, result.Tests, 4)
	assert.Len(t, result.Failures, 0)

	assert.Equal(t, TestID{"b", "sub1b"}, result.Tests[0].TestID)
	assert.Equal(t, TestID{"b", "sub2b"}, result.Tests[1].TestID)
	assert.Equal(t, TestID{"b"}, result.Tests[2].TestID)
	assert.Equal(t, TestID(nil), result.Tests[3].TestID)
}

func TestTestScopeDeferRunsCleanupsInReverseOrder(t *testing.T) {
	var order []string
	_ = Run(TestConfiguration{}, func(ut *T) {
		ut.Run("with cleanups", func(ut0 *T) {
			ut0.Defer(func() { order = append(order, "first") })
			ut0.Defer(func() { order = append(order, "second") })
		})
	})
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestTestScopeDeferRunsEvenOnFailNow(t *testing.T) {
	cleanedUp := false
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("failing", func(ut0 *T) {
			ut0.Defer(func() { cleanedUp = true })
			ut0.Errorf("nope")
			ut0.FailNow()
		})
	})
	assert.False(t, result.OK())
	assert.True(t, cleanedUp)
}

func TestTestScopeRequireCapability(t *testing.T) {
	ranWithCapability := false
	ranWithoutCapability := false
	result := Run(TestConfiguration{Capabilities: []string{"gestures"}}, func(ut *T) {
		ut.Run("has it", func(ut0 *T) {
			ut0.RequireCapability("gestures")
			ranWithCapability = true
		})
		ut.Run("does not have it", func(ut0 *T) {
			ut0.RequireCapability("frames")
			ranWithoutCapability = true
		})
	})
	assert.True(t, result.OK())
	assert.True(t, ranWithCapability)
	assert.False(t, ranWithoutCapability)
}

func TestTestScopeDebugOutputIsCaptured(t *testing.T) {
	var captured testCapturingTestLogger
	_ = Run(TestConfiguration{TestLogger: &captured}, func(ut *T) {
		ut.Run("with output", func(ut0 *T) {
			ut0.Debug("message %d", 1)
			ut0.DebugLogger().Printf("message %d", 2)
		})
	})
	if assert.Len(t, captured.outputs, 1) {
		output := captured.outputs[0]
		if assert.Len(t, output, 2) {
			assert.Equal(t, "message 1", output[0].Message)
			assert.Equal(t, "message 2", output[1].Message)
		}
	}
}

type testCapturingTestLogger struct {
	outputs []framework.CapturedOutput
}

func (l *testCapturingTestLogger) TestStarted(TestID)      {}
func (l *testCapturingTestLogger) TestError(TestID, error) {}
func (l *testCapturingTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	l.outputs = append(l.outputs, debugOutput)
}
func (l *testCapturingTestLogger) TestSkipped(TestID, string) {}
func (l *testCapturingTestLogger) EndLog(Results) error       { return nil }
