package schedule

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/masjidsuite/minaret/internal/model"
)

// Decode parses and validates a schedule payload. It fails with
// ErrMalformedPayload when the bytes are not parseable JSON and with
// ErrSchemaViolation when they parse but break a structural invariant.
// Validation happens here and only here; stores and the resolver trust
// any dataset this function returns.
func Decode(raw []byte) (*model.ScheduleDataset, error) {
	var ds model.ScheduleDataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := validate(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Encode serializes a dataset to the wire format. Output is deterministic:
// field order follows the struct tags and times are kept as the validated
// strings, so nothing depends on ambient locale or timezone.
func Encode(ds *model.ScheduleDataset) ([]byte, error) {
	raw, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("encode schedule: %w", err)
	}
	return raw, nil
}

func validate(ds *model.ScheduleDataset) error {
	if ds.Year <= 0 {
		return fmt.Errorf("%w: missing or invalid year", ErrSchemaViolation)
	}
	if len(ds.Entries) == 0 {
		return fmt.Errorf("%w: no prayer time entries", ErrSchemaViolation)
	}

	var prev time.Time
	for i := range ds.Entries {
		e := &ds.Entries[i]

		day, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return fmt.Errorf("%w: entry %d: bad date %q", ErrSchemaViolation, i, e.Date)
		}
		if i > 0 && !day.After(prev) {
			return fmt.Errorf("%w: entry %d: date %q out of order", ErrSchemaViolation, i, e.Date)
		}
		prev = day

		if _, err := parseClock(e.Sunrise); err != nil {
			return fmt.Errorf("%w: entry %s: sunrise: %v", ErrSchemaViolation, e.Date, err)
		}

		windows := []struct {
			name string
			w    model.PrayerWindow
		}{
			{"fajr", e.Fajr},
			{"dhuhr", e.Dhuhr},
			{"asr", e.Asr},
			{"maghrib", e.Maghrib},
			{"isha", e.Isha},
		}
		for _, pw := range windows {
			adhan, err := parseClock(pw.w.Adhan)
			if err != nil {
				return fmt.Errorf("%w: entry %s: %s adhan: %v", ErrSchemaViolation, e.Date, pw.name, err)
			}
			jamaah, err := parseClock(pw.w.Jamaah)
			if err != nil {
				return fmt.Errorf("%w: entry %s: %s jamaah: %v", ErrSchemaViolation, e.Date, pw.name, err)
			}
			if jamaah.Before(adhan) {
				return fmt.Errorf("%w: entry %s: %s jamaah precedes adhan", ErrSchemaViolation, e.Date, pw.name)
			}
		}

		if e.Jummah != nil {
			if _, err := parseClock(*e.Jummah); err != nil {
				return fmt.Errorf("%w: entry %s: jummah: %v", ErrSchemaViolation, e.Date, err)
			}
		}
	}
	return nil
}

func parseClock(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing time")
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q", s)
	}
	return t, nil
}
