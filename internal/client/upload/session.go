// Package upload drives multi-batch uploads against the gallery server:
// a session state machine with batch and per-file progress, and a
// coordinator that selects the transfer flow from the event's storage mode.
package upload

import "sync"

// State is the lifecycle phase of one upload session.
type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// FileProgress is the sub-progress of one direct object-store transfer.
// It resets at the start of each file and is cleared once the file
// reports completion.
type FileProgress struct {
	FileName      string
	Percentage    int
	BytesUploaded int64
	TotalBytes    int64
}

// Progress is a point-in-time snapshot of a session.
type Progress struct {
	State   State
	Current int
	Total   int
	File    *FileProgress
}

// Session is the upload session state machine:
// Idle -> Uploading -> {Completed, Failed}. All methods are safe for
// concurrent use.
type Session struct {
	mu      sync.Mutex
	state   State
	current int
	total   int
	file    *FileProgress
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// Start begins a session over total files. Calling Start while already
// uploading discards the previous session's state and begins a fresh one.
func (s *Session) Start(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateUploading
	s.current = 0
	s.total = total
	s.file = nil
}

// IncrementProgress advances the file counter by n. It is a no-op when no
// session is active.
func (s *Session) IncrementProgress(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUploading {
		return
	}
	s.current += n
	if s.current > s.total {
		s.current = s.total
	}
}

// BeginFile starts sub-progress tracking for one file's direct transfer.
func (s *Session) BeginFile(name string, totalBytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUploading {
		return
	}
	s.file = &FileProgress{FileName: name, TotalBytes: totalBytes}
}

// UpdateFile records transfer progress of the current file.
func (s *Session) UpdateFile(bytesUploaded int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUploading || s.file == nil {
		return
	}
	s.file.BytesUploaded = bytesUploaded
	if s.file.TotalBytes > 0 {
		s.file.Percentage = int(bytesUploaded * 100 / s.file.TotalBytes)
	}
}

// EndFile clears sub-progress once the current file's transfer completed.
func (s *Session) EndFile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = nil
}

// Complete moves the session to its successful terminal state.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateCompleted
	s.file = nil
}

// Fail moves the session to its failed terminal state.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	s.file = nil
}

// Reset returns the session to Idle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.current = 0
	s.total = 0
	s.file = nil
}

// Snapshot returns the current progress. The file pointer, when present,
// is a copy.
func (s *Session) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Progress{State: s.state, Current: s.current, Total: s.total}
	if s.file != nil {
		f := *s.file
		p.File = &f
	}
	return p
}
