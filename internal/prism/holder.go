package prism

import (
	"strings"
	"sync"
)

// Holder keeps at most one Session alive. It is created once at startup
// and handed to everything that needs the CLI.
type Holder struct {
	mu       sync.Mutex
	session  *Session
	defaults Options
}

// NewHolder returns a Holder that builds sessions from defaults. The
// defaults' WorkingDirectory and URL are the fallbacks used when Get is
// called without them.
func NewHolder(defaults Options) *Holder {
	return &Holder{defaults: defaults}
}

// Get returns the live session, creating it on first use. A non-empty url
// replaces the URL of an existing session; workDir is ignored once a
// session exists.
func (h *Holder) Get(workDir, url string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session != nil {
		if strings.TrimSpace(url) != "" {
			h.session.SetURL(url)
		}
		return h.session, nil
	}

	opts := h.defaults
	if strings.TrimSpace(workDir) != "" {
		opts.WorkingDirectory = workDir
	}
	if strings.TrimSpace(url) != "" {
		opts.URL = url
	}

	session, err := NewSession(opts)
	if err != nil {
		return nil, err
	}
	h.session = session
	return session, nil
}

// Dispose drops the live session and its cached executable so the next Get
// builds a fresh one. Process environment is left untouched.
func (h *Holder) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session != nil {
		h.session.reset()
	}
	h.session = nil
}
