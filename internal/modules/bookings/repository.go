// Package bookings persists extracted booking records and scrape session
// progress. One bookings row per appointment day, keyed by the MJA
// identifier; multi-day orders additionally get a shared header row.
package bookings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/athoward/bookhound/internal/database"
	"github.com/athoward/bookhound/internal/domain"
)

// Booking is one persisted appointment-day row.
type Booking struct {
	BookingID  string  `json:"booking_id"`
	MJRID      *string `json:"mjr_id"`
	CreationID *string `json:"creation_id"`

	CardStatus *string `json:"card_status"`

	IsMultiday           bool    `json:"is_multiday"`
	AppointmentSequence  *int    `json:"appointment_sequence"`
	AppointmentCountHint *int    `json:"appointment_count_hint"`
	TypeHint             *string `json:"type_hint"`

	LanguagePair   *string  `json:"language_pair"`
	ClientName     *string  `json:"client_name"`
	Address        *string  `json:"address"`
	BookingType    *string  `json:"booking_type"`
	ContactName    *string  `json:"contact_name"`
	ContactPhone   *string  `json:"contact_phone"`
	TravelDistance *float64 `json:"travel_distance"`
	MeetingLink    *string  `json:"meeting_link"`

	BookingDate *string `json:"booking_date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Duration    *string `json:"duration"`

	Payments domain.PaymentSet `json:"payments"`
	DayTotal *float64          `json:"day_total"`

	Notes *string `json:"notes"`

	Postcode *string `json:"postcode"`
	IsRemote bool    `json:"is_remote"`

	LastUpdated   *string                 `json:"last_updated"`
	ScrapeAttempt int                     `json:"scrape_attempt"`
	Status        domain.ProcessingStatus `json:"status"`
}

// OrderHeader is the shared header row of a multi-day order.
type OrderHeader struct {
	MJRID           string   `json:"mjr_id"`
	DateRange       *string  `json:"date_range"`
	AppointmentInfo *string  `json:"appointment_info"`
	OverallTotal    *float64 `json:"overall_total"`
	HeaderTotal     *float64 `json:"header_total"`
	LastUpdated     *string  `json:"last_updated"`
}

// Session is one scrape run's progress row.
type Session struct {
	SessionID        string  `json:"session_id"`
	StartedAt        string  `json:"started_at"`
	EndedAt          *string `json:"ended_at"`
	Status           string  `json:"status"`
	LastState        *string `json:"last_state"`
	CurrentBookingID *string `json:"current_booking_id"`
	CurrentMJRID     *string `json:"current_mjr_id"`
	BookingsScraped  int     `json:"bookings_scraped"`
	Errors           int     `json:"errors"`
	ErrorMessage     *string `json:"error_message"`
}

// Filter narrows ListBookings results. Zero values mean "any".
type Filter struct {
	Status domain.ProcessingStatus
	MJRID  string
	Date   string // DD-MM-YYYY
	Limit  int
}

// Repository provides booking and session persistence.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a bookings repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "bookings-repository").Logger(),
	}
}

// Migrate creates the tables if they don't exist.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, schema := range []string{bookingsSchema, multidayHeadersSchema, scrapeSessionsSchema} {
		if _, err := r.db.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to apply bookings schema: %w", err)
		}
	}
	return nil
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// UpsertDescriptor records a list-card sighting. New bookings start pending;
// for known bookings only the card-derived fields are refreshed. A cancelled
// card forces the cancelled status either way.
func (r *Repository) UpsertDescriptor(ctx context.Context, d *domain.Descriptor) error {
	status := domain.StatusPending
	if d.Status == domain.CardStatusCancelled {
		status = domain.StatusCancelledOnList
	}

	isRemote := 0
	if d.Remote {
		isRemote = 1
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bookings (
			booking_id, card_status, postcode, is_remote,
			start_time, end_time, duration, language_pair,
			last_updated, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(booking_id) DO UPDATE SET
			card_status = excluded.card_status,
			postcode = COALESCE(excluded.postcode, bookings.postcode),
			is_remote = excluded.is_remote,
			start_time = COALESCE(excluded.start_time, bookings.start_time),
			end_time = COALESCE(excluded.end_time, bookings.end_time),
			duration = COALESCE(excluded.duration, bookings.duration),
			language_pair = COALESCE(excluded.language_pair, bookings.language_pair),
			last_updated = excluded.last_updated,
			status = CASE
				WHEN excluded.status = 'cancelled_on_list' THEN excluded.status
				ELSE bookings.status
			END`,
		d.Ref, string(d.Status), d.Postcode, isRemote,
		d.StartTime, d.EndTime, d.Duration, d.LanguagePair,
		nowStamp(), string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert booking %s: %w", d.Ref, err)
	}
	return nil
}

// ApplySecondary attaches the secondary-page hints to a booking.
func (r *Repository) ApplySecondary(ctx context.Context, bookingID string, info domain.SecondaryInfo) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET
			creation_id = COALESCE(?, creation_id),
			mjr_id = COALESCE(?, mjr_id),
			appointment_count_hint = ?,
			type_hint = COALESCE(?, type_hint),
			is_multiday = CASE WHEN ? > 1 THEN 1 ELSE is_multiday END,
			status = ?,
			last_updated = ?
		WHERE booking_id = ?`,
		info.CreationRef, info.OrderRef,
		info.AppointmentCountHint, info.TypeHint,
		info.AppointmentCountHint,
		string(domain.StatusSecondaryProcessed), nowStamp(), bookingID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply secondary info to %s: %w", bookingID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	return nil
}

// SaveOrder persists one extracted order atomically. listBookingID is the
// MJA the crawl entered the detail page through; it keys the row when a
// single-day payment block carries no identifier of its own. Day rows with
// no usable identifier are skipped, not invented.
func (r *Repository) SaveOrder(ctx context.Context, listBookingID string, order *domain.Order) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if order.IsMultiday() {
			return r.saveMultiDay(ctx, tx, listBookingID, order)
		}
		return r.saveSingleDay(ctx, tx, listBookingID, order)
	})
}

func (r *Repository) saveSingleDay(ctx context.Context, tx *sql.Tx, listBookingID string, order *domain.Order) error {
	bookingID := listBookingID
	if order.SubRef != nil {
		bookingID = *order.SubRef
	}

	var date, start, end, duration *string
	if order.Single != nil {
		date, start, end, duration = order.Single.BookingDate, order.Single.StartTime, order.Single.EndTime, order.Single.Duration
	}

	return r.upsertDayRow(ctx, tx, dayRow{
		BookingID:   bookingID,
		Order:       order,
		Sequence:    1,
		IsMultiday:  false,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
		Duration:    duration,
		Payments:    order.DayPayments,
	})
}

func (r *Repository) saveMultiDay(ctx context.Context, tx *sql.Tx, listBookingID string, order *domain.Order) error {
	if order.Ref != nil {
		var dateRange, apptInfo *string
		if order.Multi != nil {
			dateRange, apptInfo = order.Multi.DateRange, order.Multi.AppointmentInfo
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO multiday_headers (mjr_id, date_range, appointment_info, overall_total, header_total, last_updated)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(mjr_id) DO UPDATE SET
				date_range = excluded.date_range,
				appointment_info = excluded.appointment_info,
				overall_total = excluded.overall_total,
				header_total = excluded.header_total,
				last_updated = excluded.last_updated`,
			*order.Ref, dateRange, apptInfo, order.OverallTotal, order.HeaderTotal, nowStamp(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert multiday header %s: %w", *order.Ref, err)
		}
	}

	for i, day := range order.Days {
		bookingID := ""
		switch {
		case day.Ref != nil:
			bookingID = *day.Ref
		case i == 0 && listBookingID != "":
			// The entry day is identifiable through the card the crawl
			// clicked even when the page omits its identifier.
			bookingID = listBookingID
		default:
			r.log.Warn().
				Int("sequence", i+1).
				Str("mjr_id", derefOr(order.Ref, "")).
				Msg("Skipping day row with no identifier")
			continue
		}

		err := r.upsertDayRow(ctx, tx, dayRow{
			BookingID:   bookingID,
			Order:       order,
			Sequence:    i + 1,
			IsMultiday:  true,
			BookingDate: day.BookingDate,
			Payments:    day.Payments,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// dayRow is the per-day projection of an order written to the bookings table.
type dayRow struct {
	BookingID   string
	Order       *domain.Order
	Sequence    int
	IsMultiday  bool
	BookingDate *string
	StartTime   *string
	EndTime     *string
	Duration    *string
	Payments    domain.PaymentSet
}

func (r *Repository) upsertDayRow(ctx context.Context, tx *sql.Tx, row dayRow) error {
	order := row.Order
	isMultiday := 0
	if row.IsMultiday {
		isMultiday = 1
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (
			booking_id, mjr_id, is_multiday, appointment_sequence,
			language_pair, client_name, address, booking_type,
			contact_name, contact_phone, travel_distance, meeting_link,
			booking_date, start_time, end_time, duration,
			day_pay_sl, day_pay_ooh, day_pay_urg, day_pay_td, day_pay_tt, day_pay_aep,
			day_total, notes, last_updated, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(booking_id) DO UPDATE SET
			mjr_id = COALESCE(excluded.mjr_id, bookings.mjr_id),
			is_multiday = excluded.is_multiday,
			appointment_sequence = excluded.appointment_sequence,
			language_pair = COALESCE(excluded.language_pair, bookings.language_pair),
			client_name = excluded.client_name,
			address = excluded.address,
			booking_type = excluded.booking_type,
			contact_name = excluded.contact_name,
			contact_phone = excluded.contact_phone,
			travel_distance = excluded.travel_distance,
			meeting_link = excluded.meeting_link,
			booking_date = COALESCE(excluded.booking_date, bookings.booking_date),
			start_time = COALESCE(excluded.start_time, bookings.start_time),
			end_time = COALESCE(excluded.end_time, bookings.end_time),
			duration = COALESCE(excluded.duration, bookings.duration),
			day_pay_sl = excluded.day_pay_sl,
			day_pay_ooh = excluded.day_pay_ooh,
			day_pay_urg = excluded.day_pay_urg,
			day_pay_td = excluded.day_pay_td,
			day_pay_tt = excluded.day_pay_tt,
			day_pay_aep = excluded.day_pay_aep,
			day_total = excluded.day_total,
			notes = excluded.notes,
			last_updated = excluded.last_updated,
			status = excluded.status`,
		row.BookingID, order.Ref, isMultiday, row.Sequence,
		order.LanguagePair, order.ClientName, order.Address, order.BookingType,
		order.ContactName, order.ContactPhone, order.TravelDistance, order.MeetingLink,
		row.BookingDate, row.StartTime, row.EndTime, row.Duration,
		row.Payments.ServiceLine, row.Payments.OutOfHours, row.Payments.Urgency,
		row.Payments.TravelDistance, row.Payments.TravelTime, row.Payments.Enhancement,
		order.DayTotal, order.Notes, nowStamp(), string(domain.StatusScraped),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert booking row %s: %w", row.BookingID, err)
	}
	return nil
}

// SetStatus updates a booking's processing status.
func (r *Repository) SetStatus(ctx context.Context, bookingID string, status domain.ProcessingStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, last_updated = ? WHERE booking_id = ?`,
		string(status), nowStamp(), bookingID,
	)
	if err != nil {
		return fmt.Errorf("failed to set status for %s: %w", bookingID, err)
	}
	return nil
}

// IncrementAttempt bumps a booking's scrape attempt counter.
func (r *Repository) IncrementAttempt(ctx context.Context, bookingID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET scrape_attempt = scrape_attempt + 1, last_updated = ? WHERE booking_id = ?`,
		nowStamp(), bookingID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment attempt for %s: %w", bookingID, err)
	}
	return nil
}

const bookingColumns = `
	booking_id, mjr_id, creation_id, card_status,
	is_multiday, appointment_sequence, appointment_count_hint, type_hint,
	language_pair, client_name, address, booking_type,
	contact_name, contact_phone, travel_distance, meeting_link,
	booking_date, start_time, end_time, duration,
	day_pay_sl, day_pay_ooh, day_pay_urg, day_pay_td, day_pay_tt, day_pay_aep,
	day_total, notes, postcode, is_remote,
	last_updated, scrape_attempt, status`

// Get returns one booking row, nil when absent.
func (r *Repository) Get(ctx context.Context, bookingID string) (*Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_id = ?`, bookingID)

	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %s: %w", bookingID, err)
	}
	return b, nil
}

// List returns bookings matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.MJRID != "" {
		query += ` AND mjr_id = ?`
		args = append(args, f.MJRID)
	}
	if f.Date != "" {
		query += ` AND booking_date = ?`
		args = append(args, f.Date)
	}
	query += ` ORDER BY last_updated DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// PendingIDs returns booking ids still waiting to be scraped, oldest first.
func (r *Repository) PendingIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT booking_id FROM bookings WHERE status IN (?, ?) ORDER BY last_updated ASC`,
		string(domain.StatusPending), string(domain.StatusSecondaryProcessed),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bookings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetOrderHeader returns a multi-day order's header row, nil when absent.
func (r *Repository) GetOrderHeader(ctx context.Context, mjrID string) (*OrderHeader, error) {
	var h OrderHeader
	err := r.db.QueryRowContext(ctx, `
		SELECT mjr_id, date_range, appointment_info, overall_total, header_total, last_updated
		FROM multiday_headers WHERE mjr_id = ?`, mjrID).
		Scan(&h.MJRID, &h.DateRange, &h.AppointmentInfo, &h.OverallTotal, &h.HeaderTotal, &h.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order header %s: %w", mjrID, err)
	}
	return &h, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (*Booking, error) {
	var b Booking
	var isMultiday, isRemote int
	var status string

	err := s.Scan(
		&b.BookingID, &b.MJRID, &b.CreationID, &b.CardStatus,
		&isMultiday, &b.AppointmentSequence, &b.AppointmentCountHint, &b.TypeHint,
		&b.LanguagePair, &b.ClientName, &b.Address, &b.BookingType,
		&b.ContactName, &b.ContactPhone, &b.TravelDistance, &b.MeetingLink,
		&b.BookingDate, &b.StartTime, &b.EndTime, &b.Duration,
		&b.Payments.ServiceLine, &b.Payments.OutOfHours, &b.Payments.Urgency,
		&b.Payments.TravelDistance, &b.Payments.TravelTime, &b.Payments.Enhancement,
		&b.DayTotal, &b.Notes, &b.Postcode, &isRemote,
		&b.LastUpdated, &b.ScrapeAttempt, &status,
	)
	if err != nil {
		return nil, err
	}

	b.IsMultiday = isMultiday != 0
	b.IsRemote = isRemote != 0
	b.Status = domain.ProcessingStatus(status)
	return &b, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
