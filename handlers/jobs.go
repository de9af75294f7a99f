package handlers

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"

	"ecofood/config"
	"ecofood/db"
)

// CreatePlanJobRequest is the JSON body for launching a planning job
type CreatePlanJobRequest struct {
	HouseholdID  int64    `json:"household_id"`
	WeekStart    string   `json:"week_start"`
	Days         []string `json:"days,omitempty"`
	EcoFriendly  bool     `json:"eco_friendly"`
	UseLeftovers bool     `json:"use_leftovers"`
	Notes        string   `json:"notes,omitempty"`
}

func createPlanJobHandler(c rweb.Context) error {
	var req CreatePlanJobRequest
	if err := json.Unmarshal(c.Request().Body(), &req); err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid request body"})
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "week_start must be YYYY-MM-DD"})
	}

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	household, err := database.GetHousehold(req.HouseholdID)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to load household"), 500)
	}
	if household == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "household not found"})
	}

	job, err := database.CreateJob(db.CreateJobParams{
		HouseholdID:  req.HouseholdID,
		WeekStart:    weekStart,
		Days:         req.Days,
		EcoFriendly:  req.EcoFriendly,
		UseLeftovers: req.UseLeftovers,
		Notes:        req.Notes,
	})
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to create planning job"), 500)
	}

	go runner.Run(job.ID)

	logger.Info("Planning job accepted", "job_id", job.ID, "household_id", req.HouseholdID)
	c.Response().SetStatus(202)
	return c.WriteJSON(job)
}

func getPlanJobHandler(c rweb.Context) error {
	jobID := c.Request().Param("id")

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	job, err := database.GetJob(jobID)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to load job"), 500)
	}
	if job == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "job not found"})
	}

	return c.WriteJSON(job)
}

func cancelPlanJobHandler(c rweb.Context) error {
	jobID := c.Request().Param("id")

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	job, err := database.GetJob(jobID)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to load job"), 500)
	}
	if job == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "job not found"})
	}

	if err := database.CancelJob(jobID); err != nil {
		if err == db.ErrJobFinished {
			c.Response().SetStatus(409)
			return c.WriteJSON(map[string]string{"error": "job already finished", "status": job.Status})
		}
		return c.WriteError(serr.Wrap(err, "failed to cancel job"), 500)
	}

	logger.Info("Planning job cancelled", "job_id", jobID)
	return c.WriteJSON(map[string]bool{"success": true})
}

// pumpJobEvents polls a job's event log and pushes new events onto the
// SSE channel, resuming after the client's last seen id. The channel
// is closed once the job is terminal and the log fully drained.
func pumpJobEvents(c rweb.Context, clientChan chan any) {
	jobID := c.Request().Param("id")

	var lastID int64
	if after := c.Request().QueryParam("after"); after != "" {
		if parsed, err := strconv.ParseInt(after, 10, 64); err == nil {
			lastID = parsed
		}
	}

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "event stream failed to get database", "job_id", jobID)
		close(clientChan)
		return
	}

	pollInterval := config.Get().EventPollInterval
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		events, err := database.ListJobEventsSince(jobID, lastID)
		if err != nil {
			logger.LogErr(err, "failed to poll job events", "job_id", jobID)
			close(clientChan)
			return
		}

		for _, event := range events {
			data, err := json.Marshal(event)
			if err != nil {
				logger.LogErr(err, "failed to marshal job event", "event_id", event.ID)
				continue
			}
			select {
			case clientChan <- rweb.SSEvent{Type: "message", Data: string(data)}:
				lastID = event.ID
			default:
				logger.Warn("SSE client channel full, dropping event", "job_id", jobID)
			}
		}

		job, err := database.GetJob(jobID)
		if err != nil || job == nil || job.Terminal() {
			// Drain once more: the terminal event may land just after
			// the poll above
			if remaining, err := database.ListJobEventsSince(jobID, lastID); err == nil {
				for _, event := range remaining {
					if data, err := json.Marshal(event); err == nil {
						clientChan <- rweb.SSEvent{Type: "message", Data: string(data)}
						lastID = event.ID
					}
				}
			}
			close(clientChan)
			return
		}

		<-ticker.C
	}
}
