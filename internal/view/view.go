// Package view holds the portal's presentational views: each issues one
// fetch when mounted, tracks loading, error and data, and renders as text.
package view

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Status is where a view is in its single fetch.
type Status int

// View states.
const (
	Loading Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// LoadingText is rendered while the fetch is in flight.
const LoadingText = "불러오는 중..."

// Row is one rendered list entry.
type Row struct {
	Title  string
	Detail string
}

// Content is what a loader produces.
type Content struct {
	Rows []Row

	// Fallback marks reference data served in place of live data; Notice
	// is the message shown with it.
	Fallback bool
	Notice   string
}

// State is a snapshot of a view.
type State struct {
	Status  Status
	Title   string
	Content Content
	Err     error
}

// Loader performs a view's fetch.
type Loader func(ctx context.Context) (Content, error)

// View is one screen.
type View struct {
	name  Name
	title string
	load  Loader

	once sync.Once
	done chan struct{}

	mu    sync.RWMutex
	state State
}

// New returns an unmounted view in the Loading state.
func New(name Name, title string, load Loader) *View {
	return &View{
		name:  name,
		title: title,
		load:  load,
		done:  make(chan struct{}),
		state: State{Status: Loading, Title: title},
	}
}

// Name returns the view name.
func (v *View) Name() Name { return v.name }

// Mount starts the fetch. Only the first call fetches; every call returns
// a channel closed once the view has settled.
func (v *View) Mount(ctx context.Context) <-chan struct{} {
	v.once.Do(func() {
		go func() {
			defer close(v.done)
			content, err := v.load(ctx)

			v.mu.Lock()
			defer v.mu.Unlock()
			if err != nil {
				v.state.Status = Failed
				v.state.Err = err
				return
			}
			v.state.Status = Ready
			v.state.Content = content
		}()
	})
	return v.done
}

// State returns the current snapshot.
func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Render writes the current state as text.
func (v *View) Render(w io.Writer) error {
	return Render(w, v.State())
}

// Render writes s as text: a title line, then the loading indicator, the
// error, or the rows.
func Render(w io.Writer, s State) error {
	ew := &errWriter{w: w}
	ew.printf("== %s ==\n", s.Title)

	switch s.Status {
	case Loading:
		ew.printf("%s\n", LoadingText)
	case Failed:
		ew.printf("오류: %v\n", s.Err)
	case Ready:
		if s.Content.Fallback && s.Content.Notice != "" {
			ew.printf("! %s\n", s.Content.Notice)
		}
		if len(s.Content.Rows) == 0 {
			ew.printf("표시할 항목이 없습니다.\n")
		}
		for _, r := range s.Content.Rows {
			if r.Detail == "" {
				ew.printf("- %s\n", r.Title)
				continue
			}
			ew.printf("- %s | %s\n", r.Title, r.Detail)
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
