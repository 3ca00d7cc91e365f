package suites

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/qaforge/uiharness/driver"
	"github.com/qaforge/uiharness/framework/uitest"
	"github.com/qaforge/uiharness/page"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targetURL(t *uitest.T, path string) string {
	return strings.TrimSuffix(requireContext(t).Config().Target, "/") + path
}

func doWebNavigationTests(t *uitest.T) {
	t.RequireCapability(driver.CapabilityNavigation)
	ctx := requireContext(t)

	t.Run("opens the target", func(t *uitest.T) {
		home := NewHomePage(ctx.NewPage(t))
		ctx.Recorder().Step(t, "open home page", func() error {
			return home.Open(targetURL(t, "/"))
		})
		require.NoError(t, home.WaitVisible(home.Heading))

		title, err := home.Title()
		require.NoError(t, err)
		assert.NotEqual(t, "", title)
	})

	t.Run("reports the current URL", func(t *uitest.T) {
		home := NewHomePage(ctx.NewPage(t))
		ctx.Recorder().Step(t, "open home page", func() error {
			return home.Open(targetURL(t, "/"))
		})

		url, err := home.CurrentURL()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, strings.TrimSuffix(ctx.Config().Target, "/")),
			"current URL %q should be under the target", url)
	})
}

func doWebElementTests(t *uitest.T) {
	ctx := requireContext(t)
	home := NewHomePage(ctx.NewPage(t))
	ctx.Recorder().Step(t, "open home page", func() error {
		return home.Open(targetURL(t, "/"))
	})
	require.NoError(t, home.WaitVisible(home.Heading))

	t.Run("finds a single element", func(t *uitest.T) {
		el, err := home.Find(home.Heading)
		require.NoError(t, err)

		text, err := el.Text()
		require.NoError(t, err)
		assert.NotEqual(t, "", text)
	})

	t.Run("reports a timeout for a missing element", func(t *uitest.T) {
		impatient := page.New(ctx.Driver(), t.DebugLogger(), 500*time.Millisecond)
		_, err := impatient.Find(driver.CSS("#does-not-exist"))
		require.Error(t, err)

		actionErr := driver.AsActionError("find", err)
		assert.Equal(t, driver.KindTimeout, actionErr.Kind)
	})

	t.Run("finds all matching elements", func(t *uitest.T) {
		els, err := home.FindAll(driver.CSS("body *"))
		require.NoError(t, err)
		assert.NotEqual(t, 0, len(els))
	})

	t.Run("finds no elements without an error", func(t *uitest.T) {
		els, err := home.FindAll(driver.CSS(".no-such-class"))
		require.NoError(t, err)
		assert.Equal(t, 0, len(els))
	})
}

func doWebWaitTests(t *uitest.T) {
	ctx := requireContext(t)

	t.Run("waits for content that appears later", func(t *uitest.T) {
		p := ctx.NewPage(t)
		ctx.Recorder().Step(t, "open delayed page", func() error {
			return p.Open(targetURL(t, "/delayed?ms=300"))
		})

		late := driver.CSS("#late")
		require.NoError(t, p.WaitFor(page.ElementVisible(late), ctx.Config().Timeout))

		text, err := p.Text(late)
		require.NoError(t, err)
		assert.Equal(t, "finally here", text)
	})

	t.Run("waits for a title", func(t *uitest.T) {
		p := ctx.NewPage(t)
		ctx.Recorder().Step(t, "open home page", func() error {
			return p.Open(targetURL(t, "/"))
		})
		require.NoError(t, p.WaitFor(page.URLMatches(regexp.MustCompile(`/$`)), ctx.Config().Timeout))

		title, err := p.Title()
		require.NoError(t, err)
		require.NoError(t, p.WaitFor(page.TitleContains(title), ctx.Config().Timeout))
	})

	t.Run("reports a timeout after the full wait budget", func(t *uitest.T) {
		p := ctx.NewPage(t)
		ctx.Recorder().Step(t, "open home page", func() error {
			return p.Open(targetURL(t, "/"))
		})

		timeout := 400 * time.Millisecond
		started := time.Now()
		err := p.WaitFor(page.ElementPresent(driver.CSS("#never-appears")), timeout)
		elapsed := time.Since(started)

		require.Error(t, err)
		actionErr := driver.AsActionError("wait", err)
		assert.Equal(t, driver.KindTimeout, actionErr.Kind)
		assert.GreaterOrEqual(t, elapsed, timeout,
			"timeout must not be reported before the wait budget elapses")
	})
}

func doWebGestureTests(t *uitest.T) {
	t.RequireCapability(driver.CapabilityGestures)
	ctx := requireContext(t)

	gestures, ok := ctx.Driver().(driver.Gestures)
	require.True(t, ok, "driver reports the gestures capability but does not implement them")
	mouse, hasMouse := ctx.Driver().(driver.Mouse)

	home := NewHomePage(ctx.NewPage(t))
	ctx.Recorder().Step(t, "open home page", func() error {
		return home.Open(targetURL(t, "/"))
	})
	require.NoError(t, home.WaitVisible(home.Heading))

	t.Run("double click", func(t *uitest.T) {
		ctx.Recorder().Step(t, "double click heading", func() error {
			return gestures.DoubleTap(home.Heading)
		})
	})

	t.Run("drag and drop", func(t *uitest.T) {
		t.NonCritical("synthesized pointer drags are timing-sensitive in headless browsers")
		ctx.Recorder().Step(t, "drag source onto target", func() error {
			return gestures.DragAndDrop(driver.CSS("#drag-source"), driver.CSS("#drop-target"))
		})
	})

	t.Run("hover", func(t *uitest.T) {
		if !hasMouse {
			t.SkipWithReason("driver has no pointer")
		}
		ctx.Recorder().Step(t, "hover over login link", func() error {
			return mouse.Hover(home.LoginLink)
		})
	})

	t.Run("context click", func(t *uitest.T) {
		if !hasMouse {
			t.SkipWithReason("driver has no pointer")
		}
		ctx.Recorder().Step(t, "right click heading", func() error {
			return mouse.ContextClick(home.Heading)
		})
	})
}

func doWebFrameTests(t *uitest.T) {
	t.RequireCapability(driver.CapabilityFrames)
	ctx := requireContext(t)

	frames, ok := ctx.Driver().(driver.Frames)
	require.True(t, ok, "driver reports the frames capability but does not implement it")

	p := ctx.NewPage(t)
	ctx.Recorder().Step(t, "open framed page", func() error {
		return p.Open(targetURL(t, "/framed"))
	})
	require.NoError(t, p.WaitVisible(driver.CSS("#outer-note")))

	t.Run("finds elements inside a frame", func(t *uitest.T) {
		ctx.Recorder().Step(t, "switch to content frame", func() error {
			return frames.SwitchToFrame(driver.CSS("#content-frame"))
		})
		t.Defer(func() { _ = frames.SwitchToDefault() })

		text, err := p.Text(driver.CSS("#heading"))
		require.NoError(t, err)
		assert.NotEqual(t, "", text)
	})

	t.Run("returns to the top-level document", func(t *uitest.T) {
		require.NoError(t, frames.SwitchToFrame(driver.CSS("#content-frame")))
		require.NoError(t, frames.SwitchToDefault())

		_, err := p.Find(driver.CSS("#outer-note"))
		require.NoError(t, err)
	})
}

func doWebLoginTests(t *uitest.T) {
	ctx := requireContext(t)
	username, hasUsername := ctx.Config().Credential("username")
	password, hasPassword := ctx.Config().Credential("password")
	if !hasUsername || !hasPassword {
		t.SkipWithReason(`configuration has no "username"/"password" credentials`)
	}

	openLogin := func(t *uitest.T) *LoginPage {
		home := NewHomePage(ctx.NewPage(t))
		ctx.Recorder().Step(t, "open home page", func() error {
			return home.Open(targetURL(t, "/"))
		})
		var lp *LoginPage
		ctx.Recorder().Step(t, "go to login page", func() error {
			var err error
			lp, err = home.GoToLogin()
			return err
		})
		return lp
	}

	t.Run("accepts valid credentials", func(t *uitest.T) {
		lp := openLogin(t)
		ctx.Recorder().Step(t, "submit valid credentials", func() error {
			return lp.Login(username, password)
		})
		require.NoError(t, lp.WaitFor(
			page.TextIs(lp.Greeting, fmt.Sprintf("Welcome, %s", username)),
			ctx.Config().Timeout))
	})

	t.Run("rejects invalid credentials", func(t *uitest.T) {
		lp := openLogin(t)
		ctx.Recorder().Step(t, "submit invalid credentials", func() error {
			return lp.Login(username, "not-the-password")
		})
		require.NoError(t, lp.WaitVisible(lp.Error))

		_, err := ctx.Driver().Find(lp.Greeting)
		require.Error(t, err)
	})
}

func doWebDiagnosticsTests(t *uitest.T) {
	ctx := requireContext(t)
	p := ctx.NewPage(t)
	ctx.Recorder().Step(t, "open home page", func() error {
		return p.Open(targetURL(t, "/"))
	})

	t.Run("captures a screenshot", func(t *uitest.T) {
		t.RequireCapability(driver.CapabilityScreenshots)
		data, err := ctx.Driver().Screenshot()
		require.NoError(t, err)
		require.Greater(t, len(data), 8)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[0:4])
	})

	t.Run("captures page source", func(t *uitest.T) {
		t.RequireCapability(driver.CapabilityPageSource)
		source, err := ctx.Driver().PageSource()
		require.NoError(t, err)
		assert.Contains(t, strings.ToLower(source), "<html")
	})
}
