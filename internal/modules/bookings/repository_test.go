package bookings

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/athoward/bookhound/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, zerolog.Nop())
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestUpsertDescriptor(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	d := &domain.Descriptor{
		Ref:          "MJA11112222",
		Status:       domain.CardStatusNormal,
		Postcode:     domain.StringPtr("EX4 2MP"),
		StartTime:    domain.StringPtr("09:00:00"),
		EndTime:      domain.StringPtr("10:30:00"),
		Duration:     domain.StringPtr("01:30"),
		LanguagePair: domain.StringPtr("English to Polish"),
	}
	require.NoError(t, repo.UpsertDescriptor(ctx, d))

	b, err := repo.Get(ctx, "MJA11112222")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, domain.StatusPending, b.Status)
	require.NotNil(t, b.Postcode)
	assert.Equal(t, "EX4 2MP", *b.Postcode)
	assert.False(t, b.IsRemote)
	require.NotNil(t, b.StartTime)
	assert.Equal(t, "09:00:00", *b.StartTime)
}

func TestUpsertDescriptorCancelledOverridesStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertDescriptor(ctx, &domain.Descriptor{
		Ref: "MJA22223333", Status: domain.CardStatusNormal, Remote: true,
	}))
	require.NoError(t, repo.UpsertDescriptor(ctx, &domain.Descriptor{
		Ref: "MJA22223333", Status: domain.CardStatusCancelled, Remote: true,
	}))

	b, err := repo.Get(ctx, "MJA22223333")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, domain.StatusCancelledOnList, b.Status)
	assert.True(t, b.IsRemote)
}

func TestUpsertDescriptorResightDoesNotResetProgress(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	d := &domain.Descriptor{Ref: "MJA33334444", Status: domain.CardStatusNormal, Remote: true}
	require.NoError(t, repo.UpsertDescriptor(ctx, d))
	require.NoError(t, repo.SetStatus(ctx, "MJA33334444", domain.StatusScraped))

	require.NoError(t, repo.UpsertDescriptor(ctx, d))

	b, err := repo.Get(ctx, "MJA33334444")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScraped, b.Status)
}

func TestApplySecondary(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertDescriptor(ctx, &domain.Descriptor{
		Ref: "MJA44445555", Status: domain.CardStatusNormal, Remote: true,
	}))

	info := domain.SecondaryInfo{
		CreationRef:          domain.StringPtr("MJB11223344"),
		OrderRef:             domain.StringPtr("MJR55556666"),
		AppointmentCountHint: 3,
		TypeHint:             domain.StringPtr("Face To Face"),
	}
	require.NoError(t, repo.ApplySecondary(ctx, "MJA44445555", info))

	b, err := repo.Get(ctx, "MJA44445555")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSecondaryProcessed, b.Status)
	require.NotNil(t, b.MJRID)
	assert.Equal(t, "MJR55556666", *b.MJRID)
	require.NotNil(t, b.CreationID)
	assert.Equal(t, "MJB11223344", *b.CreationID)
	assert.True(t, b.IsMultiday, "count hint above one marks the booking multiday")
	require.NotNil(t, b.AppointmentCountHint)
	assert.Equal(t, 3, *b.AppointmentCountHint)
}

func TestApplySecondaryUnknownBooking(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.ApplySecondary(context.Background(), "MJA00000000", domain.SecondaryInfo{AppointmentCountHint: 1})
	assert.Error(t, err)
}

func TestSaveOrderSingleDay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertDescriptor(ctx, &domain.Descriptor{
		Ref: "MJA10000001", Status: domain.CardStatusNormal, Postcode: domain.StringPtr("EX4 2MP"),
	}))

	order := &domain.Order{
		Ref:  domain.StringPtr("MJR10000001"),
		Kind: domain.KindSingleDay,
		Single: &domain.SingleDaySchedule{
			BookingDate: domain.StringPtr("01-05-2025"),
			StartTime:   domain.StringPtr("09:00:00"),
			EndTime:     domain.StringPtr("10:00:00"),
			Duration:    domain.StringPtr("01:00"),
		},
		LanguagePair: domain.StringPtr("English to Polish"),
		ClientName:   domain.StringPtr("Acme Ltd"),
		OverallTotal: domain.FloatPtr(120),
		DayTotal:     domain.FloatPtr(120),
		SubRef:       domain.StringPtr("MJA10000001"),
		DayPayments:  domain.PaymentSet{ServiceLine: domain.FloatPtr(100)},
	}
	require.NoError(t, repo.SaveOrder(ctx, "MJA10000001", order))

	b, err := repo.Get(ctx, "MJA10000001")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, domain.StatusScraped, b.Status)
	assert.False(t, b.IsMultiday)
	require.NotNil(t, b.MJRID)
	assert.Equal(t, "MJR10000001", *b.MJRID)
	require.NotNil(t, b.BookingDate)
	assert.Equal(t, "01-05-2025", *b.BookingDate)
	require.NotNil(t, b.Payments.ServiceLine)
	assert.InDelta(t, 100, *b.Payments.ServiceLine, 0.001)
	require.NotNil(t, b.DayTotal)
	assert.InDelta(t, 120, *b.DayTotal, 0.001)
	require.NotNil(t, b.Postcode, "card-derived fields survive the detail save")
}

func TestSaveOrderMultiDay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	order := &domain.Order{
		Ref:  domain.StringPtr("MJR20000001"),
		Kind: domain.KindMultiDay,
		Multi: &domain.MultiDaySchedule{
			DateRange:       domain.StringPtr("01-03-2024 - 03-03-2024"),
			AppointmentInfo: domain.StringPtr("3 Appointments / 3 Days"),
		},
		LanguagePair: domain.StringPtr("English to Polish"),
		HeaderTotal:  domain.FloatPtr(300),
		OverallTotal: domain.FloatPtr(300),
		DayTotal:     domain.FloatPtr(100),
		Days: []domain.DayEntry{
			{
				Ref:         domain.StringPtr("MJA20000001"),
				BookingDate: domain.StringPtr("01-03-2024"),
				Payments:    domain.PaymentSet{ServiceLine: domain.FloatPtr(80), OutOfHours: domain.FloatPtr(20)},
			},
			{
				Ref:         domain.StringPtr("MJA20000002"),
				BookingDate: domain.StringPtr("02-03-2024"),
				Payments:    domain.PaymentSet{ServiceLine: domain.FloatPtr(100)},
			},
			{
				Ref:         domain.StringPtr("MJA20000003"),
				BookingDate: domain.StringPtr("03-03-2024"),
				Payments:    domain.PaymentSet{ServiceLine: domain.FloatPtr(100)},
			},
		},
	}
	require.NoError(t, repo.SaveOrder(ctx, "MJA20000001", order))

	rows, err := repo.List(ctx, Filter{MJRID: "MJR20000001"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, b := range rows {
		assert.True(t, b.IsMultiday)
		assert.Equal(t, domain.StatusScraped, b.Status)
	}

	header, err := repo.GetOrderHeader(ctx, "MJR20000001")
	require.NoError(t, err)
	require.NotNil(t, header)
	require.NotNil(t, header.OverallTotal)
	assert.InDelta(t, 300, *header.OverallTotal, 0.001)
	require.NotNil(t, header.DateRange)
	assert.Equal(t, "01-03-2024 - 03-03-2024", *header.DateRange)

	second, err := repo.Get(ctx, "MJA20000002")
	require.NoError(t, err)
	require.NotNil(t, second)
	require.NotNil(t, second.AppointmentSequence)
	assert.Equal(t, 2, *second.AppointmentSequence)
	require.NotNil(t, second.BookingDate)
	assert.Equal(t, "02-03-2024", *second.BookingDate)
}

func TestSaveOrderMultiDaySkipsUnidentifiedDays(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	order := &domain.Order{
		Ref:  domain.StringPtr("MJR30000001"),
		Kind: domain.KindMultiDay,
		Days: []domain.DayEntry{
			{BookingDate: domain.StringPtr("01-03-2024"), Payments: domain.PaymentSet{ServiceLine: domain.FloatPtr(50)}},
			{BookingDate: domain.StringPtr("02-03-2024"), Payments: domain.PaymentSet{ServiceLine: domain.FloatPtr(50)}},
		},
	}
	require.NoError(t, repo.SaveOrder(ctx, "MJA30000001", order))

	rows, err := repo.List(ctx, Filter{MJRID: "MJR30000001"})
	require.NoError(t, err)
	require.Len(t, rows, 1, "first day falls back to the list card id, second has none")
	assert.Equal(t, "MJA30000001", rows[0].BookingID)
}

func TestListFiltersAndPending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertDescriptor(ctx, &domain.Descriptor{Ref: "MJA00000001", Status: domain.CardStatusNormal, Remote: true}))
	require.NoError(t, repo.UpsertDescriptor(ctx, &domain.Descriptor{Ref: "MJA00000002", Status: domain.CardStatusCancelled, Remote: true}))

	pending, err := repo.PendingIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"MJA00000001"}, pending)

	cancelled, err := repo.List(ctx, Filter{Status: domain.StatusCancelledOnList})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "MJA00000002", cancelled[0].BookingID)

	require.NoError(t, repo.IncrementAttempt(ctx, "MJA00000001"))
	b, err := repo.Get(ctx, "MJA00000001")
	require.NoError(t, err)
	assert.Equal(t, 1, b.ScrapeAttempt)
}

func TestGetMissingBooking(t *testing.T) {
	repo := newTestRepo(t)

	b, err := repo.Get(context.Background(), "MJA99999999")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestSessionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.StartSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, repo.UpdateSessionProgress(ctx, id, "detail",
		domain.StringPtr("MJA10000001"), domain.StringPtr("MJR10000001")))
	require.NoError(t, repo.BumpSessionCounters(ctx, id, 1, 0))
	require.NoError(t, repo.FinishSession(ctx, id, SessionCompleted, nil))

	s, err := repo.GetSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, SessionCompleted, s.Status)
	assert.Equal(t, 1, s.BookingsScraped)
	require.NotNil(t, s.LastState)
	assert.Equal(t, "detail", *s.LastState)
	require.NotNil(t, s.EndedAt)

	recent, err := repo.RecentSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, id, recent[0].SessionID)
}
