package model

// PrayerWindow is one prayer's valid window: the adhan (call to prayer)
// marks the start, the jamaah is the congregational time observed after it.
// Both are wall-clock "HH:MM" strings taken verbatim from the wire format.
type PrayerWindow struct {
	Adhan  string `json:"adhan"`
	Jamaah string `json:"jamaah"`
}

// DailyEntry holds one calendar day of the schedule.
type DailyEntry struct {
	Date    string       `json:"date"`
	Fajr    PrayerWindow `json:"fajr"`
	Sunrise string       `json:"sunrise"`
	Dhuhr   PrayerWindow `json:"dhuhr"`
	Asr     PrayerWindow `json:"asr"`
	Maghrib PrayerWindow `json:"maghrib"`
	Isha    PrayerWindow `json:"isha"`
	Jummah  *string      `json:"jummah,omitempty"`
}

// Location is carried on the dataset but not consumed by the resolution
// subsystem itself; it is surfaced for downstream features.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ScheduleDataset struct {
	Year     int          `json:"year"`
	Mosque   string       `json:"mosque"`
	Location Location     `json:"location"`
	Entries  []DailyEntry `json:"prayerTimes"`
}

// EntryFor returns the entry for an ISO "YYYY-MM-DD" date, if the dataset covers it.
func (d *ScheduleDataset) EntryFor(date string) (*DailyEntry, bool) {
	for i := range d.Entries {
		if d.Entries[i].Date == date {
			return &d.Entries[i], true
		}
	}
	return nil, false
}

// Source identifies which tier a resolved dataset came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceCache   Source = "cache"
	SourceBundled Source = "bundled"
)

// ResolutionResult is what callers of the resolver receive. Warning is set
// when the dataset is served from a degraded tier; it is informational only.
type ResolutionResult struct {
	Dataset *ScheduleDataset `json:"schedule"`
	Source  Source           `json:"source"`
	Warning string           `json:"warning,omitempty"`
}
