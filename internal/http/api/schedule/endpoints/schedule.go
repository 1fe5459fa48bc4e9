package endpoints

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/masjidsuite/minaret/internal/http/api"
	"github.com/masjidsuite/minaret/internal/http/api/schedule/packets"
	"github.com/masjidsuite/minaret/internal/schedule"
)

type ScheduleController struct {
	resolver *schedule.Resolver
}

func NewScheduleController(resolver *schedule.Resolver) *ScheduleController {
	return &ScheduleController{resolver: resolver}
}

func RegisterScheduleRoutes(r gin.IRoutes, resolver *schedule.Resolver) {
	ctl := NewScheduleController(resolver)

	r.GET("/schedule", api.ResolveEndpoint(ctl.getSchedule))
	r.GET("/schedule/today", api.ResolveEndpoint(ctl.getToday))
	r.POST("/schedule/refresh", api.ResolveEndpoint(ctl.refreshSchedule))
	r.DELETE("/schedule/cache", api.ResolveEndpoint(ctl.clearCache))
}

// getSchedule resolves the full dataset through the tiered fallback chain.
// Clients always get a schedule; the source and warning fields tell them how
// fresh it is.
func (s *ScheduleController) getSchedule(c *gin.Context) (any, *api.Error) {
	res, err := s.resolver.Resolve(c.Request.Context(), schedule.ResolveOptions{})
	if err != nil {
		log.Error().Err(err).Msg("schedule resolution failed")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "schedule unavailable"}
	}

	return packets.ScheduleResponse{
		Source:   string(res.Source),
		Warning:  res.Warning,
		Schedule: res.Dataset,
	}, nil
}

// getToday returns the single entry for today, or for an explicit
// ?date=YYYY-MM-DD override.
func (s *ScheduleController) getToday(c *gin.Context) (any, *api.Error) {
	res, err := s.resolver.Resolve(c.Request.Context(), schedule.ResolveOptions{})
	if err != nil {
		log.Error().Err(err).Msg("schedule resolution failed")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "schedule unavailable"}
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	entry, ok := res.Dataset.EntryFor(date)
	if !ok {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "no schedule entry for " + date}
	}

	return packets.TodayResponse{
		Source:  string(res.Source),
		Warning: res.Warning,
		Date:    date,
		Entry:   *entry,
	}, nil
}

// refreshSchedule forces a resolution that goes to the network first
// (pull-to-refresh). The body is optional.
func (s *ScheduleController) refreshSchedule(c *gin.Context) (any, *api.Error) {
	var request packets.RefreshRequest
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	res, err := s.resolver.Resolve(c.Request.Context(), schedule.ResolveOptions{
		ForceRefresh: true,
		SkipRemote:   request.SkipRemote,
	})
	if err != nil {
		log.Error().Err(err).Msg("schedule refresh failed")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "schedule unavailable"}
	}

	return packets.ScheduleResponse{
		Source:   string(res.Source),
		Warning:  res.Warning,
		Schedule: res.Dataset,
	}, nil
}

// clearCache drops the cached payload; the next resolve repopulates it.
func (s *ScheduleController) clearCache(c *gin.Context) (any, *api.Error) {
	if err := s.resolver.ClearCache(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("failed to clear schedule cache")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "failed to clear cache"}
	}
	return packets.ClearCacheResponse{Success: "cache cleared"}, nil
}
