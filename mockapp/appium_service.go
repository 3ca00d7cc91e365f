package mockapp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/qaforge/uiharness/framework"

	"github.com/gorilla/mux"
)

// ScreenElement is one element in the mock device's current screen model.
type ScreenElement struct {
	Name            string // matched by the "id" strategy
	AccessibilityID string // matched by the "accessibility id" strategy
	Selector        string // matched by the "css selector" strategy
	Text            string
	Displayed       bool
}

// Screen is the view state the mock automation server reports to the driver.
type Screen struct {
	Title    string
	Source   string
	Elements []ScreenElement
}

// GestureCall records one "mobile:" gesture script invocation, for assertions.
type GestureCall struct {
	Script string
	Args   map[string]interface{}
}

// A minimal valid 1x1 transparent PNG, returned for screenshot requests.
var screenshotPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// AppiumService is a mux-routed mock implementation of the WebDriver protocol
// subset used by the mobile driver. One service instance supports one session at
// a time, which matches how the harness uses a real server.
type AppiumService struct {
	handler     http.Handler
	debugLogger framework.Logger

	lock          sync.Mutex
	screen        Screen
	sessionActive bool
	sessionID     string
	lastSessionNo int
	startedCaps   map[string]interface{}
	gestures      []GestureCall
	elementIDs    map[string]int // wire element ID -> index into screen.Elements
	lastElementNo int

	// RejectSessions makes new-session requests fail, to exercise
	// InitializationError handling.
	RejectSessions bool
}

func NewAppiumService(initialScreen Screen, debugLogger framework.Logger) *AppiumService {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	s := &AppiumService{
		screen:      initialScreen,
		debugLogger: debugLogger,
		elementIDs:  make(map[string]int),
	}

	router := mux.NewRouter()
	router.HandleFunc("/session", s.serveNewSession).Methods("POST")
	router.HandleFunc("/session/{id}", s.serveDeleteSession).Methods("DELETE")
	router.HandleFunc("/session/{id}/url", s.serveNavigate).Methods("POST")
	router.HandleFunc("/session/{id}/title", s.serveTitle).Methods("GET")
	router.HandleFunc("/session/{id}/source", s.serveSource).Methods("GET")
	router.HandleFunc("/session/{id}/screenshot", s.serveScreenshot).Methods("GET")
	router.HandleFunc("/session/{id}/element", s.serveFindElement).Methods("POST")
	router.HandleFunc("/session/{id}/elements", s.serveFindElements).Methods("POST")
	router.HandleFunc("/session/{id}/element/{eid}/click", s.serveElementClick).Methods("POST")
	router.HandleFunc("/session/{id}/element/{eid}/value", s.serveElementValue).Methods("POST")
	router.HandleFunc("/session/{id}/element/{eid}/text", s.serveElementText).Methods("GET")
	router.HandleFunc("/session/{id}/element/{eid}/displayed", s.serveElementDisplayed).Methods("GET")
	router.HandleFunc("/session/{id}/execute/sync", s.serveExecute).Methods("POST")
	s.handler = router

	return s
}

func (s *AppiumService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.debugLogger.Printf("Mock automation server received %s %s", r.Method, r.URL.Path)
	s.handler.ServeHTTP(w, r)
}

// SetScreen replaces the current screen model. Existing element handles go stale.
func (s *AppiumService) SetScreen(screen Screen) {
	s.lock.Lock()
	s.screen = screen
	s.elementIDs = make(map[string]int)
	s.lock.Unlock()
}

// SessionActive reports whether a session is currently open.
func (s *AppiumService) SessionActive() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.sessionActive
}

// StartedCapabilities returns the alwaysMatch capabilities of the last session.
func (s *AppiumService) StartedCapabilities() map[string]interface{} {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.startedCaps
}

// Gestures returns all recorded gesture script invocations.
func (s *AppiumService) Gestures() []GestureCall {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]GestureCall(nil), s.gestures...)
}

func (s *AppiumService) serveNewSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Capabilities struct {
			AlwaysMatch map[string]interface{} `json:"alwaysMatch"`
		} `json:"capabilities"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.RejectSessions {
		writeWireError(w, http.StatusInternalServerError, "session not created",
			"session rejected by test configuration")
		return
	}
	if s.sessionActive {
		writeWireError(w, http.StatusInternalServerError, "session not created",
			"a session is already active")
		return
	}
	s.lastSessionNo++
	s.sessionID = fmt.Sprintf("mock-session-%d", s.lastSessionNo)
	s.sessionActive = true
	s.startedCaps = req.Capabilities.AlwaysMatch

	writeWireValue(w, map[string]interface{}{
		"sessionId":    s.sessionID,
		"capabilities": req.Capabilities.AlwaysMatch,
	})
}

func (s *AppiumService) serveDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.checkSessionLocked(w, r) {
		return
	}
	s.sessionActive = false
	writeWireValue(w, nil)
}

func (s *AppiumService) serveNavigate(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.checkSessionLocked(w, r) {
		return
	}
	writeWireValue(w, nil)
}

func (s *AppiumService) serveTitle(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.checkSessionLocked(w, r) {
		return
	}
	writeWireValue(w, s.screen.Title)
}

func (s *AppiumService) serveSource(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.checkSessionLocked(w, r) {
		return
	}
	writeWireValue(w, s.screen.Source)
}

func (s *AppiumService) serveScreenshot(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.checkSessionLocked(w, r) {
		return
	}
	writeWireValue(w, base64.StdEncoding.EncodeToString(screenshotPNG))
}

func (s *AppiumService) serveFindElement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Using string `json:"using"`
		Value string `json:"value"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.checkSessionLocked(w, r) {
		return
	}
	for i, el := range s.screen.Elements {
		if matchElement(el, req.Using, req.Value) {
			writeWireValue(w, map[string]string{
				"element-6066-11e4-a52e-4f735466cecf": s.registerElementLocked(i),
			})
			return
		}
	}
	writeWireError(w, http.StatusNotFound, "no such element",
		fmt.Sprintf("no element matching %s=%q", req.Using, req.Value))
}

func (s *AppiumService) serveFindElements(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Using string `json:"using"`
		Value string `json:"value"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.checkSessionLocked(w, r) {
		return
	}
	matches := []map[string]string{}
	for i, el := range s.screen.Elements {
		if matchElement(el, req.Using, req.Value) {
			matches = append(matches, map[string]string{
				"element-6066-11e4-a52e-4f735466cecf": s.registerElementLocked(i),
			})
		}
	}
	writeWireValue(w, matches)
}

func (s *AppiumService) serveElementClick(w http.ResponseWriter, r *http.Request) {
	s.withElement(w, r, func(el *ScreenElement) (interface{}, *wireFailure) {
		if !el.Displayed {
			return nil, &wireFailure{http.StatusBadRequest, "element not interactable",
				"element is not displayed"}
		}
		return nil, nil
	})
}

func (s *AppiumService) serveElementValue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.withElement(w, r, func(el *ScreenElement) (interface{}, *wireFailure) {
		el.Text += req.Text
		return nil, nil
	})
}

func (s *AppiumService) serveElementText(w http.ResponseWriter, r *http.Request) {
	s.withElement(w, r, func(el *ScreenElement) (interface{}, *wireFailure) {
		return el.Text, nil
	})
}

func (s *AppiumService) serveElementDisplayed(w http.ResponseWriter, r *http.Request) {
	s.withElement(w, r, func(el *ScreenElement) (interface{}, *wireFailure) {
		return el.Displayed, nil
	})
}

func (s *AppiumService) serveExecute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Script string        `json:"script"`
		Args   []interface{} `json:"args"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.checkSessionLocked(w, r) {
		return
	}
	call := GestureCall{Script: req.Script}
	if len(req.Args) > 0 {
		if m, ok := req.Args[0].(map[string]interface{}); ok {
			call.Args = m
		}
	}
	s.gestures = append(s.gestures, call)
	writeWireValue(w, nil)
}

type wireFailure struct {
	status  int
	code    string
	message string
}

// withElement resolves the element handle in the request path, then runs fn on
// the live element under the lock.
func (s *AppiumService) withElement(
	w http.ResponseWriter,
	r *http.Request,
	fn func(el *ScreenElement) (interface{}, *wireFailure),
) {
	eid := mux.Vars(r)["eid"]

	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.checkSessionLocked(w, r) {
		return
	}
	index, ok := s.elementIDs[eid]
	if !ok || index >= len(s.screen.Elements) {
		writeWireError(w, http.StatusNotFound, "stale element reference",
			fmt.Sprintf("element %q is not part of the current screen", eid))
		return
	}
	value, failure := fn(&s.screen.Elements[index])
	if failure != nil {
		writeWireError(w, failure.status, failure.code, failure.message)
		return
	}
	writeWireValue(w, value)
}

func (s *AppiumService) checkSessionLocked(w http.ResponseWriter, r *http.Request) bool {
	id := mux.Vars(r)["id"]
	if !s.sessionActive || id != s.sessionID {
		writeWireError(w, http.StatusNotFound, "invalid session id",
			fmt.Sprintf("session %q is not active", id))
		return false
	}
	return true
}

func (s *AppiumService) registerElementLocked(index int) string {
	for eid, i := range s.elementIDs {
		if i == index {
			return eid
		}
	}
	s.lastElementNo++
	eid := fmt.Sprintf("mock-element-%d", s.lastElementNo)
	s.elementIDs[eid] = index
	return eid
}

func matchElement(el ScreenElement, using, value string) bool {
	switch using {
	case "id":
		return el.Name == value
	case "accessibility id":
		return el.AccessibilityID == value
	case "css selector":
		return el.Selector == value
	default:
		return false
	}
}

func writeWireValue(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"value": value})
}

func writeWireError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"value": map[string]string{"error": code, "message": message},
	})
}
