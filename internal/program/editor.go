package program

import (
	"context"
	"errors"
	"sync"
	"time"

	"fitcoach/coaching-app/internal/domain"
)

// EditorState is the persistence lifecycle of an editing session.
type EditorState string

const (
	EditorUnloaded EditorState = "unloaded"
	EditorLoading  EditorState = "loading"
	EditorReady    EditorState = "ready"
	EditorSaving   EditorState = "saving"
	EditorError    EditorState = "error"
)

var (
	ErrEditorNotReady = errors.New("editor has no loaded document")
	ErrEditorLoading  = errors.New("editor load already in progress")
)

// DefaultDebounce is the quiet period after the last edit before a save is
// sent. Rapid successive edits collapse into one save carrying the latest
// document.
const DefaultDebounce = 600 * time.Millisecond

// Op is one engine transition applied to the current document.
type Op func(domain.ProgramTemplateState) (domain.ProgramTemplateState, error)

// LoadFunc fetches the program row the editor session is bound to.
type LoadFunc func(ctx context.Context) (*domain.ProgramTemplate, error)

// SaveFunc persists the document and returns the canonical row as stored by
// the backend (authoritative for timestamps and normalization).
type SaveFunc func(ctx context.Context, state domain.ProgramTemplateState) (*domain.ProgramTemplate, error)

// Timer is the cancellable handle behind the debounce. Satisfied by
// *time.Timer.
type Timer interface {
	Stop() bool
}

// TimerFactory arms a timer; injected so tests can drive "edit, edit, fire"
// without real clocks.
type TimerFactory func(d time.Duration, fn func()) Timer

func realTimer(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Editor owns the in-memory document for one program while it is being
// edited. Edits apply optimistically and immediately; persistence is
// debounced and coalesced. A failed save keeps the local edits so no work is
// lost, and the next edit re-arms the save timer.
type Editor struct {
	load     LoadFunc
	save     SaveFunc
	delay    time.Duration
	newTimer TimerFactory

	mu      sync.Mutex
	state   EditorState
	doc     domain.ProgramTemplateState
	hasDoc  bool
	dirty   bool
	gen     uint64 // bumped on every edit; detects edits racing an in-flight save
	timer   Timer
	lastErr error
}

// EditorOption customizes an Editor.
type EditorOption func(*Editor)

// WithTimerFactory replaces the real debounce timer, for tests.
func WithTimerFactory(f TimerFactory) EditorOption {
	return func(e *Editor) { e.newTimer = f }
}

// NewEditor creates an unloaded editor session. delay <= 0 uses
// DefaultDebounce.
func NewEditor(load LoadFunc, save SaveFunc, delay time.Duration, opts ...EditorOption) *Editor {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	e := &Editor{
		load:     load,
		save:     save,
		delay:    delay,
		newTimer: realTimer,
		state:    EditorUnloaded,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports the current lifecycle state.
func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the last load or save error, if any.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Document returns a deep copy of the current in-memory document.
func (e *Editor) Document() (domain.ProgramTemplateState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded() {
		return domain.ProgramTemplateState{}, ErrEditorNotReady
	}
	return cloneState(e.doc), nil
}

// Load fetches and normalizes the document. A load failure is blocking: the
// editor stays in the error state and edits are rejected until a Load
// succeeds.
func (e *Editor) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.state == EditorLoading {
		e.mu.Unlock()
		return ErrEditorLoading
	}
	e.state = EditorLoading
	e.mu.Unlock()

	tpl, err := e.load(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = EditorError
		e.lastErr = err
		return err
	}
	e.doc = Normalize(tpl.State)
	e.hasDoc = true
	e.dirty = false
	e.state = EditorReady
	e.lastErr = nil
	return nil
}

// Apply runs one engine transition against the document. The edit takes
// effect immediately; the debounce timer is (re)armed so a burst of edits
// produces a single save of the latest state. Allowed while a save is in
// flight and after a failed save.
func (e *Editor) Apply(op Op) (domain.ProgramTemplateState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded() {
		return domain.ProgramTemplateState{}, ErrEditorNotReady
	}

	next, err := op(e.doc)
	if err != nil {
		return domain.ProgramTemplateState{}, err
	}
	e.doc = next
	e.dirty = true
	e.gen++
	if e.state == EditorError {
		// Save errors are recoverable: editing continues and the next
		// debounce cycle retries.
		e.state = EditorReady
		e.lastErr = nil
	}
	e.armLocked()
	return cloneState(e.doc), nil
}

// Flush cancels any pending debounce and saves immediately if there are
// unsaved edits. Used when the editing session closes.
func (e *Editor) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if !e.dirty || !e.loaded() {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	return e.saveNow(ctx)
}

// loaded reports whether a document is held in memory. In the error state
// this is true only when the error came from a save, not a load.
func (e *Editor) loaded() bool {
	return e.hasDoc
}

// armLocked restarts the debounce timer. Caller holds e.mu.
func (e *Editor) armLocked() {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = e.newTimer(e.delay, func() {
		_ = e.saveNow(context.Background())
	})
}

func (e *Editor) saveNow(ctx context.Context) error {
	e.mu.Lock()
	if !e.dirty || !e.loaded() {
		e.mu.Unlock()
		return nil
	}
	snapshot := cloneState(e.doc)
	snapshotGen := e.gen
	e.state = EditorSaving
	e.mu.Unlock()

	tpl, err := e.save(ctx, snapshot)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		// Local edits are retained; a later Apply re-arms the timer and the
		// save is retried then.
		e.state = EditorError
		e.lastErr = err
		return err
	}
	if e.gen == snapshotGen {
		// No edits raced the save: the server's document is authoritative.
		e.doc = Normalize(tpl.State)
		e.dirty = false
	}
	// Otherwise keep the newer local edits; their timer is already armed.
	e.state = EditorReady
	e.lastErr = nil
	return nil
}
