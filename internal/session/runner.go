package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/athoward/bookhound/internal/domain"
	"github.com/athoward/bookhound/internal/extract"
	"github.com/athoward/bookhound/internal/modules/bookings"
	"github.com/athoward/bookhound/internal/snapshot"
)

// UIDriver is the slice of the automation client the runner needs. Narrowed
// to an interface so processors are testable against a scripted fake.
type UIDriver interface {
	Source(ctx context.Context) (string, error)
	FindElement(ctx context.Context, using, value string) (string, error)
	Click(ctx context.Context, elementID string) error
	Swipe(ctx context.Context, fromX, fromY, toX, toY int, duration time.Duration) error
	Back(ctx context.Context) error
}

// Config tunes a session run.
type Config struct {
	// MaxConsecutiveErrors aborts the session when that many processor
	// steps fail back to back.
	MaxConsecutiveErrors int

	// MaxScrolls bounds both list pagination and detail-page scrolling.
	MaxScrolls int

	// StepDelay is the settle pause between state transitions.
	StepDelay time.Duration

	// DumpSnapshots archives every capture when set.
	DumpSnapshots bool

	// Swipe geometry for scroll gestures, in screen pixels.
	SwipeX, SwipeFromY, SwipeToY int
}

// DefaultRunnerConfig mirrors the tuning the crawl runs with in production.
func DefaultRunnerConfig() Config {
	return Config{
		MaxConsecutiveErrors: 5,
		MaxScrolls:           15,
		StepDelay:            500 * time.Millisecond,
		SwipeX:               540,
		SwipeFromY:           1600,
		SwipeToY:             600,
	}
}

// Runner executes one scrape session.
type Runner struct {
	cfg       Config
	ui        UIDriver
	repo      *bookings.Repository
	extractor *extract.Extractor
	archive   *snapshot.Archive
	events    *Broadcaster
	log       zerolog.Logger

	sessionID string
	state     State

	currentBookingID string
	currentOrderRef  string

	// seenCards tracks descriptors already sighted this run so list
	// pagination knows when scrolling stops revealing new cards.
	seenCards map[string]bool

	scraped           int
	errorCount        int
	consecutiveErrors int
}

// NewRunner wires a runner. archive may be nil when snapshot dumping is off.
func NewRunner(cfg Config, ui UIDriver, repo *bookings.Repository, extractor *extract.Extractor, archive *snapshot.Archive, events *Broadcaster, log zerolog.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		ui:        ui,
		repo:      repo,
		extractor: extractor,
		archive:   archive,
		events:    events,
		log:       log.With().Str("component", "session").Logger(),
	}
}

// Run drives the state machine until it finishes or errors out. The ctx
// cancels between steps; an in-flight UI command finishes first.
func (r *Runner) Run(ctx context.Context) error {
	sessionID, err := r.repo.StartSession(ctx)
	if err != nil {
		return err
	}
	r.sessionID = sessionID
	r.state = StateNavigatingToList
	r.seenCards = make(map[string]bool)
	r.scraped = 0
	r.errorCount = 0
	r.consecutiveErrors = 0

	var runErr error
	for r.state != StateFinished && r.state != StateError {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		r.log.Info().Str("state", string(r.state)).Str("booking_id", r.currentBookingID).Msg("Executing state")
		r.publish("")

		next, err := r.step(ctx)
		if err != nil {
			r.errorCount++
			r.consecutiveErrors++
			r.log.Error().Err(err).Str("state", string(r.state)).Msg("Processor step failed")
			if r.consecutiveErrors >= r.cfg.MaxConsecutiveErrors {
				runErr = fmt.Errorf("aborting after %d consecutive errors: %w", r.consecutiveErrors, err)
				r.state = StateError
				break
			}
		} else {
			r.consecutiveErrors = 0
		}
		r.state = next

		r.recordProgress(ctx)
		if r.cfg.StepDelay > 0 && r.state != StateFinished && r.state != StateError {
			select {
			case <-time.After(r.cfg.StepDelay):
			case <-ctx.Done():
			}
		}
	}

	status := bookings.SessionCompleted
	var errMessage *string
	if runErr != nil || r.state == StateError {
		status = bookings.SessionFailed
		if runErr != nil {
			msg := runErr.Error()
			errMessage = &msg
		}
	}
	if err := r.repo.FinishSession(ctx, r.sessionID, status, errMessage); err != nil {
		r.log.Error().Err(err).Msg("Failed to finalize session row")
	}
	r.publish("session finished")

	r.log.Info().
		Str("session_id", r.sessionID).
		Str("final_state", string(r.state)).
		Int("scraped", r.scraped).
		Int("errors", r.errorCount).
		Msg("Session run finished")
	return runErr
}

// step dispatches the current state to its processor.
func (r *Runner) step(ctx context.Context) (State, error) {
	switch r.state {
	case StateNavigatingToList:
		return r.processNavigation(ctx)
	case StateList:
		return r.processList(ctx)
	case StateSecondary:
		return r.processSecondary(ctx)
	case StateDetail:
		return r.processDetail(ctx)
	default:
		return StateError, fmt.Errorf("no processor for state %s", r.state)
	}
}

func (r *Runner) recordProgress(ctx context.Context) {
	var bookingID, orderRef *string
	if r.currentBookingID != "" {
		bookingID = &r.currentBookingID
	}
	if r.currentOrderRef != "" {
		orderRef = &r.currentOrderRef
	}
	if err := r.repo.UpdateSessionProgress(ctx, r.sessionID, string(r.state), bookingID, orderRef); err != nil {
		r.log.Warn().Err(err).Msg("Failed to record session progress")
	}
}

func (r *Runner) publish(message string) {
	if r.events == nil {
		return
	}
	r.events.Publish(Event{
		SessionID: r.sessionID,
		State:     r.state,
		BookingID: r.currentBookingID,
		OrderRef:  r.currentOrderRef,
		Message:   message,
		Scraped:   r.scraped,
		Errors:    r.errorCount,
		At:        time.Now().UTC(),
	})
}

// markBookingError stamps the current booking with a failure status without
// letting a bookkeeping failure mask the original error.
func (r *Runner) markBookingError(ctx context.Context, status domain.ProcessingStatus) {
	if r.currentBookingID == "" {
		return
	}
	if err := r.repo.SetStatus(ctx, r.currentBookingID, status); err != nil {
		r.log.Warn().Err(err).Str("booking_id", r.currentBookingID).Msg("Failed to record booking error status")
	}
}

// dump archives a capture when snapshot dumping is enabled.
func (r *Runner) dump(screen snapshot.Screen, primaryRef, stage, source string) {
	if !r.cfg.DumpSnapshots || r.archive == nil || source == "" {
		return
	}
	if _, err := r.archive.Capture(r.sessionID, screen, primaryRef, stage, source); err != nil {
		r.log.Warn().Err(err).Str("screen", string(screen)).Msg("Failed to archive snapshot")
	}
}
