package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"estate_e2e/config"
	"estate_e2e/pages"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

const (
	DefaultChallengePoll  = 2 * time.Second
	DefaultChallengeLimit = 2 * time.Minute
)

var (
	ErrChallengeBlocked = errors.New("human verification required in headless mode")
	ErrChallengeTimeout = errors.New("human verification not completed in time")
)

type Kind string

const (
	KindCheckbox Kind = "checkbox"
	KindImage    Kind = "image"
)

type State string

const (
	StateAbsent   State = "absent"
	StateAwaiting State = "awaiting"
	StateCleared  State = "cleared"
	StateBlocked  State = "blocked"
	StateTimedOut State = "timed-out"
)

// ChallengeError is returned when a gate could not be passed. Err is one of
// ErrChallengeBlocked, ErrChallengeTimeout or the context's error.
type ChallengeError struct {
	Kind    Kind
	Trigger string
	Waited  time.Duration
	Err     error
}

func (e *ChallengeError) Error() string {
	if e.Waited > 0 {
		return fmt.Sprintf("%s challenge (%s) after %s: %v", e.Kind, e.Trigger, e.Waited.Round(time.Second), e.Err)
	}
	return fmt.Sprintf("%s challenge (%s): %v", e.Kind, e.Trigger, e.Err)
}

func (e *ChallengeError) Unwrap() error {
	return e.Err
}

// Detection is the result of inspecting one page snapshot.
type Detection struct {
	Kind    Kind
	Trigger string
}

func (d Detection) Present() bool {
	return d.Kind != ""
}

// Detect looks for a human-verification gate in an HTML snapshot. Ready
// markers win: a page already showing results is never treated as gated.
// Image gates are checked first since they usually embed a checkbox widget.
func Detect(html string, m config.ChallengeMarkers) Detection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Detection{}
	}
	if matchFragment(doc, m.Ready) != "" {
		return Detection{}
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	gates := []struct {
		kind Kind
		set  config.MarkerSet
	}{
		{KindImage, m.Image},
		{KindCheckbox, m.Checkbox},
	}
	for _, g := range gates {
		for _, t := range g.set.Text {
			if t != "" && strings.Contains(text, t) {
				return Detection{Kind: g.kind, Trigger: t}
			}
		}
		if f := matchFragment(doc, g.set.Fragments); f != "" {
			return Detection{Kind: g.kind, Trigger: f}
		}
	}
	return Detection{}
}

var fragmentAttrs = []string{"class", "id", "src", "name"}

// matchFragment returns the first fragment found in a class, id, src or name
// attribute anywhere in the document.
func matchFragment(doc *goquery.Document, fragments []string) string {
	if len(fragments) == 0 {
		return ""
	}
	var found string
	doc.Find("[class], [id], [src], [name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range fragmentAttrs {
			v, ok := s.Attr(attr)
			if !ok || v == "" {
				continue
			}
			for _, f := range fragments {
				if f != "" && strings.Contains(v, f) {
					found = f
					return false
				}
			}
		}
		return true
	})
	return found
}

// Surface is the slice of a page the challenge handler needs.
type Surface interface {
	URL() string
	Content() (string, error)
	Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error)
}

type ChallengeHandler struct {
	Site  *config.SiteConfig
	Mode  config.RunMode
	Poll  time.Duration
	Limit time.Duration

	// OnTransition, if set, sees every state change.
	OnTransition func(kind Kind, from, to State)
}

func NewChallengeHandler(site *config.SiteConfig, mode config.RunMode, poll, limit time.Duration) *ChallengeHandler {
	if poll <= 0 {
		poll = DefaultChallengePoll
	}
	if limit <= 0 {
		limit = DefaultChallengeLimit
	}
	return &ChallengeHandler{Site: site, Mode: mode, Poll: poll, Limit: limit}
}

// Guard adapts the handler for page objects so every navigation is checked.
func (h *ChallengeHandler) Guard(ctx context.Context, s Surface) pages.Guard {
	return func(returnPath string) error {
		return h.Resolve(ctx, s, returnPath)
	}
}

// Resolve returns nil when no gate is showing or once a human has cleared
// it. In headless mode the first detection is fatal. In interactive mode it
// polls until the gate is gone or Limit passes, then navigates back to
// returnPath if the browser ended up elsewhere.
func (h *ChallengeHandler) Resolve(ctx context.Context, s Surface, returnPath string) error {
	det, err := h.inspect(s)
	if err != nil {
		log.Printf("Challenge check skipped: %v", err)
		return nil
	}
	if !det.Present() {
		return nil
	}

	h.transition(det.Kind, StateAbsent, StateAwaiting)
	log.Printf("Challenge detected: %s (trigger: %s) at %s", det.Kind, det.Trigger, s.URL())

	if !h.Mode.Interactive() {
		h.transition(det.Kind, StateAwaiting, StateBlocked)
		return &ChallengeError{Kind: det.Kind, Trigger: det.Trigger, Err: ErrChallengeBlocked}
	}

	log.Printf("Solve the %s challenge in the browser window, waiting up to %s", det.Kind, h.Limit)
	start := time.Now()
	waitCtx, cancel := context.WithTimeout(ctx, h.Limit)
	defer cancel()

	ticker := time.NewTicker(h.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			waited := time.Since(start)
			if ctx.Err() != nil {
				return &ChallengeError{Kind: det.Kind, Trigger: det.Trigger, Waited: waited, Err: ctx.Err()}
			}
			h.transition(det.Kind, StateAwaiting, StateTimedOut)
			return &ChallengeError{Kind: det.Kind, Trigger: det.Trigger, Waited: waited, Err: ErrChallengeTimeout}

		case <-ticker.C:
			current, err := h.inspect(s)
			if err != nil || current.Present() {
				continue
			}
			h.transition(det.Kind, StateAwaiting, StateCleared)
			log.Printf("Challenge cleared after %s", time.Since(start).Round(time.Millisecond))
			return h.resync(s, returnPath)
		}
	}
}

func (h *ChallengeHandler) inspect(s Surface) (Detection, error) {
	html, err := s.Content()
	if err != nil {
		return Detection{}, fmt.Errorf("read page content: %w", err)
	}
	return Detect(html, h.Site.Challenges), nil
}

func (h *ChallengeHandler) resync(s Surface, returnPath string) error {
	if returnPath == "" || strings.Contains(s.URL(), returnPath) {
		return nil
	}
	target := h.Site.URL(returnPath)
	log.Printf("Returning to %s after challenge", target)
	if _, err := s.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("return to %s after challenge: %w", target, err)
	}
	return nil
}

func (h *ChallengeHandler) transition(kind Kind, from, to State) {
	if h.OnTransition != nil {
		h.OnTransition(kind, from, to)
	}
}
