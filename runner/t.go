package runner

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// T is what a scenario body gets. *testing.T satisfies it, and so does the
// runner's own recorder, so testify's assert and require work under both.
type T interface {
	Errorf(format string, args ...any)
	FailNow()
	Logf(format string, args ...any)
	Skip(args ...any)
	Name() string
	Helper()
}

// recorder collects a scenario's outcome when it runs outside go test.
type recorder struct {
	name string

	mu       sync.Mutex
	messages []string
	logs     []string
	failed   bool
	skipped  bool
}

func newRecorder(name string) *recorder {
	return &recorder{name: name}
}

func (r *recorder) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
	r.messages = append(r.messages, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// FailNow stops the scenario goroutine. Deferred calls in the body still run.
func (r *recorder) FailNow() {
	r.mu.Lock()
	r.failed = true
	r.mu.Unlock()
	runtime.Goexit()
}

func (r *recorder) Logf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func (r *recorder) Skip(args ...any) {
	r.mu.Lock()
	r.skipped = true
	if len(args) > 0 {
		r.messages = append(r.messages, strings.TrimSpace(fmt.Sprintln(args...)))
	}
	r.mu.Unlock()
	runtime.Goexit()
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Helper() {}

func (r *recorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

func (r *recorder) Skipped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped && !r.failed
}

func (r *recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

// execute runs body on its own goroutine so FailNow and Skip can unwind it,
// and turns a panic into a failure.
func execute(r *recorder, body func(T)) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if p := recover(); p != nil {
				r.Errorf("panic: %v", p)
			}
		}()
		body(r)
	}()
	<-done
}
