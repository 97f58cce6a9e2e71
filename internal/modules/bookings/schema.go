package bookings

// One row per appointment day (MJA). Multi-day orders produce one row per
// day plus a shared header row in multiday_headers.
const bookingsSchema = `
CREATE TABLE IF NOT EXISTS bookings (
    booking_id TEXT PRIMARY KEY,
    mjr_id TEXT,
    creation_id TEXT,

    card_status TEXT,

    is_multiday INTEGER DEFAULT 0,
    appointment_sequence INTEGER,
    appointment_count_hint INTEGER,
    type_hint TEXT,

    language_pair TEXT,
    client_name TEXT,
    address TEXT,
    booking_type TEXT,
    contact_name TEXT,
    contact_phone TEXT,
    travel_distance REAL,
    meeting_link TEXT,

    booking_date TEXT,
    start_time TEXT,
    end_time TEXT,
    duration TEXT,

    day_pay_sl REAL,
    day_pay_ooh REAL,
    day_pay_urg REAL,
    day_pay_td REAL,
    day_pay_tt REAL,
    day_pay_aep REAL,
    day_total REAL,

    notes TEXT,

    postcode TEXT,
    is_remote INTEGER DEFAULT 0,

    last_updated TEXT,
    scrape_attempt INTEGER DEFAULT 0,
    status TEXT DEFAULT 'pending'
);
CREATE INDEX IF NOT EXISTS idx_bookings_mjr_id ON bookings(mjr_id);
CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status);
`

const multidayHeadersSchema = `
CREATE TABLE IF NOT EXISTS multiday_headers (
    mjr_id TEXT PRIMARY KEY,
    date_range TEXT,
    appointment_info TEXT,
    overall_total REAL,
    header_total REAL,
    last_updated TEXT
);
`

const scrapeSessionsSchema = `
CREATE TABLE IF NOT EXISTS scrape_sessions (
    session_id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    ended_at TEXT,
    status TEXT NOT NULL,
    last_state TEXT,
    current_booking_id TEXT,
    current_mjr_id TEXT,
    bookings_scraped INTEGER DEFAULT 0,
    errors INTEGER DEFAULT 0,
    error_message TEXT
);
`
