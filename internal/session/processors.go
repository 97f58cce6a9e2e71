package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/athoward/bookhound/internal/domain"
	"github.com/athoward/bookhound/internal/snapshot"
)

// processNavigation verifies the app is showing the booking list. Booking
// cards expose themselves through content-desc attributes, so a page with
// parseable descriptors is the list.
func (r *Runner) processNavigation(ctx context.Context) (State, error) {
	source, err := r.ui.Source(ctx)
	if err != nil {
		return StateNavigatingToList, err
	}
	r.dump(snapshot.ScreenList, r.sessionID, "navigation", source)

	for _, desc := range snapshot.Descs(source) {
		if r.extractor.ParseDescriptor(desc) != nil {
			return StateList, nil
		}
	}
	return StateNavigatingToList, fmt.Errorf("booking list not visible yet")
}

// processList registers every visible card, then either clicks the next
// pending one or scrolls for more. The pass finishes when scrolling stops
// revealing unseen cards.
func (r *Runner) processList(ctx context.Context) (State, error) {
	r.currentBookingID = ""
	r.currentOrderRef = ""

	for scrolls := 0; ; scrolls++ {
		source, err := r.ui.Source(ctx)
		if err != nil {
			return StateList, err
		}
		r.dump(snapshot.ScreenList, r.sessionID, fmt.Sprintf("scroll_%02d", scrolls), source)

		newCards := 0
		var candidate *domain.Descriptor
		for _, desc := range snapshot.Descs(source) {
			d := r.extractor.ParseDescriptor(desc)
			if d == nil {
				continue
			}
			if !r.seenCards[d.Ref] {
				r.seenCards[d.Ref] = true
				newCards++
			}

			if err := r.repo.UpsertDescriptor(ctx, d); err != nil {
				r.log.Warn().Err(err).Str("booking_id", d.Ref).Msg("Failed to store card descriptor")
				continue
			}

			switch d.Status {
			case domain.CardStatusNewOffer, domain.CardStatusViewed:
				// Offers aren't accepted work yet; opening them would
				// acknowledge them in the app.
				if err := r.repo.SetStatus(ctx, d.Ref, domain.StatusSkippedOfferViewed); err != nil {
					r.log.Warn().Err(err).Str("booking_id", d.Ref).Msg("Failed to mark offer card skipped")
				}
				continue
			case domain.CardStatusCancelled:
				continue
			}

			if candidate == nil && r.isPending(ctx, d.Ref) {
				candidate = d
			}
		}

		if candidate != nil {
			return r.clickCard(ctx, candidate.Ref)
		}

		if scrolls >= r.cfg.MaxScrolls || (scrolls > 0 && newCards == 0) {
			r.log.Info().Int("cards_seen", len(r.seenCards)).Int("scrolls", scrolls).Msg("List pass complete")
			return StateFinished, nil
		}
		if err := r.ui.Swipe(ctx, r.cfg.SwipeX, r.cfg.SwipeFromY, r.cfg.SwipeX, r.cfg.SwipeToY, 0); err != nil {
			return StateError, fmt.Errorf("list scroll failed: %w", err)
		}
	}
}

func (r *Runner) isPending(ctx context.Context, bookingID string) bool {
	b, err := r.repo.Get(ctx, bookingID)
	if err != nil || b == nil {
		return false
	}
	return b.Status == domain.StatusPending || b.Status == domain.StatusSecondaryProcessed
}

func (r *Runner) clickCard(ctx context.Context, bookingID string) (State, error) {
	selector := fmt.Sprintf(`//android.view.ViewGroup[@content-desc and contains(@content-desc, %q)]`, bookingID)
	elementID, err := r.ui.FindElement(ctx, "xpath", selector)
	if err != nil {
		r.markBookingErrorFor(ctx, bookingID, domain.StatusErrorList)
		return StateList, fmt.Errorf("card for %s not clickable: %w", bookingID, err)
	}
	if err := r.ui.Click(ctx, elementID); err != nil {
		r.markBookingErrorFor(ctx, bookingID, domain.StatusErrorList)
		return StateList, fmt.Errorf("failed to open card %s: %w", bookingID, err)
	}

	r.currentBookingID = bookingID
	if err := r.repo.IncrementAttempt(ctx, bookingID); err != nil {
		r.log.Warn().Err(err).Str("booking_id", bookingID).Msg("Failed to bump scrape attempt")
	}
	return StateSecondary, nil
}

func (r *Runner) markBookingErrorFor(ctx context.Context, bookingID string, status domain.ProcessingStatus) {
	if err := r.repo.SetStatus(ctx, bookingID, status); err != nil {
		r.log.Warn().Err(err).Str("booking_id", bookingID).Msg("Failed to record booking error status")
	}
}

// processSecondary reads the creation (MJB) page hints and opens the order
// behind them.
func (r *Runner) processSecondary(ctx context.Context) (State, error) {
	source, err := r.ui.Source(ctx)
	if err != nil {
		r.markBookingError(ctx, domain.StatusErrorSecondaryNav)
		next, backErr := r.backToList(ctx, 1)
		if backErr != nil {
			return next, backErr
		}
		return next, err
	}
	r.dump(snapshot.ScreenSecondary, r.currentBookingID, "initial", source)

	info := r.extractor.ParseSecondary(snapshot.Descs(source), snapshot.Tokens(source))
	if err := r.repo.ApplySecondary(ctx, r.currentBookingID, info); err != nil {
		r.log.Warn().Err(err).Str("booking_id", r.currentBookingID).Msg("Failed to store secondary info")
	}

	if info.OrderRef == nil {
		r.markBookingError(ctx, domain.StatusErrorSecondaryInfo)
		next, backErr := r.backToList(ctx, 1)
		if backErr != nil {
			return next, backErr
		}
		return next, fmt.Errorf("no order reference on secondary page for %s", r.currentBookingID)
	}
	r.currentOrderRef = *info.OrderRef

	selector := fmt.Sprintf(`//android.view.ViewGroup[@content-desc and contains(@content-desc, %q)]`, *info.OrderRef)
	elementID, err := r.ui.FindElement(ctx, "xpath", selector)
	if err != nil {
		r.markBookingError(ctx, domain.StatusErrorClickOrder)
		next, backErr := r.backToList(ctx, 1)
		if backErr != nil {
			return next, backErr
		}
		return next, fmt.Errorf("order element %s not found: %w", *info.OrderRef, err)
	}
	if err := r.ui.Click(ctx, elementID); err != nil {
		r.markBookingError(ctx, domain.StatusErrorClickOrder)
		next, backErr := r.backToList(ctx, 1)
		if backErr != nil {
			return next, backErr
		}
		return next, fmt.Errorf("failed to open order %s: %w", *info.OrderRef, err)
	}
	return StateDetail, nil
}

// processDetail captures the detail page (scrolling until the disclaimer is
// on screen), extracts the order and persists it.
func (r *Runner) processDetail(ctx context.Context) (State, error) {
	cfg := r.extractor.Config()

	var tokens []string
	for scrolls := 0; ; scrolls++ {
		source, err := r.ui.Source(ctx)
		if err != nil {
			r.markBookingError(ctx, domain.StatusErrorDetailNav)
			next, backErr := r.backToList(ctx, 2)
			if backErr != nil {
				return next, backErr
			}
			return next, err
		}
		r.dump(snapshot.ScreenDetail, r.currentOrderRef, fmt.Sprintf("scroll_%02d", scrolls), source)

		tokens = mergeTokens(tokens, snapshot.Tokens(source))

		if containsPrefix(tokens, cfg.DisclaimerPrefix) || scrolls >= r.cfg.MaxScrolls {
			break
		}
		if err := r.ui.Swipe(ctx, r.cfg.SwipeX, r.cfg.SwipeFromY, r.cfg.SwipeX, r.cfg.SwipeToY, 0); err != nil {
			r.markBookingError(ctx, domain.StatusErrorDetailNav)
			next, backErr := r.backToList(ctx, 2)
			if backErr != nil {
				return next, backErr
			}
			return next, fmt.Errorf("detail scroll failed: %w", err)
		}
	}

	order := r.extractor.ExtractOrder(tokens)
	if order.Ref == nil {
		r.markBookingError(ctx, domain.StatusErrorDetailExtract)
		next, backErr := r.backToList(ctx, 2)
		if backErr != nil {
			return next, backErr
		}
		return next, fmt.Errorf("no order reference extracted for booking %s", r.currentBookingID)
	}

	if err := r.repo.SaveOrder(ctx, r.currentBookingID, order); err != nil {
		r.markBookingError(ctx, domain.StatusErrorSave)
		next, backErr := r.backToList(ctx, 2)
		if backErr != nil {
			return next, backErr
		}
		return next, fmt.Errorf("failed to save order %s: %w", *order.Ref, err)
	}

	r.scraped++
	if err := r.repo.BumpSessionCounters(ctx, r.sessionID, 1, 0); err != nil {
		r.log.Warn().Err(err).Msg("Failed to bump session counters")
	}
	r.log.Info().
		Str("booking_id", r.currentBookingID).
		Str("order_ref", *order.Ref).
		Str("kind", string(order.Kind)).
		Int("days", len(order.Days)).
		Msg("Order scraped")
	r.publish("order scraped")

	return r.backToList(ctx, 2)
}

// backToList presses back the given number of times and resumes the list
// state. Navigation failures surface as errors so the consecutive-error
// guard can abort a stuck session.
func (r *Runner) backToList(ctx context.Context, presses int) (State, error) {
	for i := 0; i < presses; i++ {
		if err := r.ui.Back(ctx); err != nil {
			return StateError, fmt.Errorf("back navigation failed: %w", err)
		}
	}
	return StateList, nil
}

func containsPrefix(tokens []string, prefix string) bool {
	for _, tok := range tokens {
		if strings.HasPrefix(tok, prefix) {
			return true
		}
	}
	return false
}

// mergeTokens appends next to prev, dropping next's leading overlap with
// prev's tail. Consecutive partial-page captures of a scrolling view share
// a window of tokens; the merge keeps each exactly once and in order.
func mergeTokens(prev, next []string) []string {
	if len(prev) == 0 {
		return append([]string(nil), next...)
	}

	limit := len(next)
	if len(prev) < limit {
		limit = len(prev)
	}
	for overlap := limit; overlap > 0; overlap-- {
		if equalSlices(prev[len(prev)-overlap:], next[:overlap]) {
			return append(prev, next[overlap:]...)
		}
	}
	return append(prev, next...)
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
