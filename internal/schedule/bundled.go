package schedule

import (
	_ "embed"
	"fmt"

	"github.com/masjidsuite/minaret/internal/model"
)

//go:embed bundled_schedule.json
var bundledSchedule []byte

// Bundled decodes the schedule compiled into the binary. It is the floor of
// the fallback chain and is validated by a test at build time, so a failure
// here is a packaging defect rather than a runtime condition.
func Bundled() (*model.ScheduleDataset, error) {
	ds, err := Decode(bundledSchedule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundledPayloadCorrupt, err)
	}
	return ds, nil
}
