// Package domain contains the core business entities for bookhound.
// The domain layer is pure - no infrastructure dependencies.
package domain

// OrderKind discriminates single-day orders from multi-day orders.
// It is fixed at segmentation time and never re-evaluated.
type OrderKind string

const (
	// KindSingleDay is an order covering exactly one appointment day
	KindSingleDay OrderKind = "single_day"
	// KindMultiDay is an order decomposed into dated sub-appointments
	KindMultiDay OrderKind = "multi_day"
)

// CardStatus is the status of a booking as observed on a list-page card.
type CardStatus string

const (
	CardStatusNormal    CardStatus = "Normal" // Default when no prefix is present
	CardStatusCancelled CardStatus = "Cancelled"
	CardStatusNewOffer  CardStatus = "New Offer"
	CardStatusViewed    CardStatus = "Viewed"
	CardStatusUnknown   CardStatus = "Unknown" // Prefix present but not recognized
)

// ProcessingStatus tracks how far an individual booking has been processed.
type ProcessingStatus string

const (
	StatusPending            ProcessingStatus = "pending"
	StatusSecondaryProcessed ProcessingStatus = "secondary_processed"
	StatusScraped            ProcessingStatus = "scraped"
	StatusCancelledOnList    ProcessingStatus = "cancelled_on_list"
	StatusErrorList          ProcessingStatus = "error_list"
	StatusErrorSecondaryNav  ProcessingStatus = "error_nav_secondary"
	StatusErrorSecondaryInfo ProcessingStatus = "error_secondary_info"
	StatusErrorClickOrder    ProcessingStatus = "error_click_order"
	StatusErrorDetailNav     ProcessingStatus = "error_nav_detail"
	StatusErrorDetailExtract ProcessingStatus = "error_detail_extract"
	StatusErrorSave          ProcessingStatus = "error_save"
	StatusErrorUnknown       ProcessingStatus = "error_unknown"
	StatusSkippedDuplicate   ProcessingStatus = "skipped_duplicate"
	StatusSkippedManual      ProcessingStatus = "skipped_manual"
	StatusSkippedOfferViewed ProcessingStatus = "skipped_offer_viewed"
)

// PaymentSet holds the optional labeled currency amounts of one appointment
// day. Absent items are nil - a day legitimately carries any subset.
type PaymentSet struct {
	ServiceLine    *float64 `json:"service_line"`    // Service line item
	TravelDistance *float64 `json:"travel_distance"` // Travel distance line item
	TravelTime     *float64 `json:"travel_time"`     // Travel time line item
	Enhancement    *float64 `json:"enhancement"`     // Automation enhancement payment
	OutOfHours     *float64 `json:"out_of_hours"`    // Out-of-hours uplift (first occurrence only)
	Urgency        *float64 `json:"urgency"`         // Urgency uplift
}

// Empty reports whether no payment item was recognized.
func (p PaymentSet) Empty() bool {
	return p.ServiceLine == nil && p.TravelDistance == nil && p.TravelTime == nil &&
		p.Enhancement == nil && p.OutOfHours == nil && p.Urgency == nil
}

// SingleDaySchedule holds the temporal fields of a single-day order.
// All fields are independently absent-able.
type SingleDaySchedule struct {
	BookingDate *string // DD-MM-YYYY
	StartTime   *string // HH:MM:SS
	EndTime     *string // HH:MM:SS
	Duration    *string // HH:MM, end-start with overnight wrap
}

// MultiDaySchedule holds the header fields of a multi-day order, taken
// verbatim from the tokens following the multiday marker.
type MultiDaySchedule struct {
	DateRange       *string // e.g. "01-07-2025 - 02-07-2025"
	AppointmentInfo *string // e.g. "2 Appointments / 2 Days"
}

// DayEntry is one sub-appointment of a multi-day order.
type DayEntry struct {
	Ref         *string // MJA identifier, nil for the implicit single block
	BookingDate *string // Start date + day offset, DD-MM-YYYY
	Payments    PaymentSet
}

// Order is the normalized record extracted from a detail page.
// Exactly one of Single/Multi is non-nil, matching Kind.
type Order struct {
	Ref         *string // MJR identifier, absent on malformed header pages
	Kind        OrderKind
	HeaderTotal *float64

	Single *SingleDaySchedule
	Multi  *MultiDaySchedule

	LanguagePair   *string
	ClientName     *string
	Address        *string // One or two lines, newline-joined
	BookingType    *string
	ContactName    *string
	ContactPhone   *string
	TravelDistance *float64 // Miles, decimal
	MeetingLink    *string
	Notes          *string

	OverallTotal *float64
	DayTotal     *float64 // Overall total for single-day, pro-rated average for multi-day

	SubRef      *string    // MJA identifier of the sole block (single-day only)
	DayPayments PaymentSet // Sole block payments (single-day only)
	Days        []DayEntry // Multi-day only, in block-discovery order
}

// IsMultiday reports whether the order spans more than one day.
func (o *Order) IsMultiday() bool {
	return o.Kind == KindMultiDay
}

// Descriptor is the compact record behind one list-view summary card.
type Descriptor struct {
	Ref          string // MJA identifier - the one required field
	Status       CardStatus
	Postcode     *string
	Remote       bool
	StartTime    *string // HH:MM:SS
	EndTime      *string // HH:MM:SS
	Duration     *string // HH:MM
	TimeWindow   *string // Original window text, e.g. "09:00 to 10:30"
	LanguagePair *string
}

// SecondaryInfo is the hint record extracted from a secondary (MJB) page.
type SecondaryInfo struct {
	CreationRef          *string // MJB identifier
	OrderRef             *string // Owning MJR identifier
	AppointmentCountHint int     // Defaults to 1 when the page omits it
	TypeHint             *string // e.g. "Face To Face", "Video Remote Interpreting"
}

// StringPtr returns a pointer to s. Convenience for optional fields.
func StringPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f. Convenience for optional fields.
func FloatPtr(f float64) *float64 { return &f }
