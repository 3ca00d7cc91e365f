package framework

// Capabilities is a list of strings describing optional features of an automation
// driver, such as "screenshots" or "gestures". Tests use these to decide whether
// they can run against the current session.
type Capabilities []string

// Has returns true if the specified string appears in the list.
func (cs Capabilities) Has(name string) bool {
	for _, c := range cs {
		if c == name {
			return true
		}
	}
	return false
}

// HasAny returns true if any of the specified strings appear in the list.
func (cs Capabilities) HasAny(names ...string) bool {
	for _, name := range names {
		if cs.Has(name) {
			return true
		}
	}
	return false
}
