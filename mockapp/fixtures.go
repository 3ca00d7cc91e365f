package mockapp

// DemoScreen is the initial screen the mock automation server presents in
// self-test mode. Its element identifiers line up with the locators used by the
// mobile test suite.
func DemoScreen() Screen {
	return Screen{
		Title:  "Mock App",
		Source: `<hierarchy><view id="app-heading">Mock App</view></hierarchy>`,
		Elements: []ScreenElement{
			{Name: "app-heading", AccessibilityID: "app-heading", Text: "Mock App", Displayed: true},
			{Name: "username-field", AccessibilityID: "username-input", Displayed: true},
			{Name: "hidden-banner", Text: "surprise", Displayed: false},
			{Name: "drag-source", Text: "drag me", Displayed: true},
			{Name: "drop-target", Text: "drop here", Displayed: true},
		},
	}
}
