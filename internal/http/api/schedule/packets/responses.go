package packets

import "github.com/masjidsuite/minaret/internal/model"

// RESPONSES FOR /api/schedule/*

type ScheduleResponse struct {
	Source   string                 `json:"source"`
	Warning  string                 `json:"warning,omitempty"`
	Schedule *model.ScheduleDataset `json:"schedule"`
}

type TodayResponse struct {
	Source  string           `json:"source"`
	Warning string           `json:"warning,omitempty"`
	Date    string           `json:"date"`
	Entry   model.DailyEntry `json:"entry"`
}

type ClearCacheResponse struct {
	Success string `json:"success"`
}
