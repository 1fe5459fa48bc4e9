package packets

// REQUESTS FOR /api/schedule

type RefreshRequest struct {
	SkipRemote bool `json:"skip_remote"`
}
