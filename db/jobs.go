package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rohanthewiz/serr"
)

// Planning job statuses. pending and running are live; the rest are
// terminal and never transition again.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobCancelled = "cancelled"
)

// ErrJobFinished is returned when a cancel lands on a terminal job
var ErrJobFinished = serr.New("job already finished")

// PlanningJob is one background generation request. EcoFriendly,
// UseLeftovers, and Notes are captured at creation and threaded into
// every generation pass the job makes.
type PlanningJob struct {
	ID           string      `json:"id"`
	HouseholdID  int64       `json:"household_id"`
	WeekStart    time.Time   `json:"week_start"`
	Days         JSONStrings `json:"days,omitempty"`
	EcoFriendly  bool        `json:"eco_friendly"`
	UseLeftovers bool        `json:"use_leftovers"`
	Notes        string      `json:"notes,omitempty"`
	Status       string      `json:"status"`
	Error        string      `json:"error,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	FinishedAt   *time.Time  `json:"finished_at,omitempty"`
}

// Terminal reports whether the job can no longer change state
func (j *PlanningJob) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed || j.Status == JobCancelled
}

// PlanningJobEvent is one row of a job's append-only progress log.
// IDs are strictly increasing within a job; clients resume a stream
// by passing the last id they saw.
type PlanningJobEvent struct {
	ID        int64     `json:"id"`
	JobID     string    `json:"job_id"`
	Day       string    `json:"day,omitempty"`
	Stage     string    `json:"stage"`
	Agent     string    `json:"agent,omitempty"`
	Origin    string    `json:"origin"`
	Payload   JSONMap   `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateJobParams carries everything a new job needs
type CreateJobParams struct {
	HouseholdID  int64
	WeekStart    time.Time
	Days         []string
	EcoFriendly  bool
	UseLeftovers bool
	Notes        string
}

// CreateJob inserts a pending job and returns it
func (db *DB) CreateJob(params CreateJobParams) (*PlanningJob, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO planning_jobs (id, household_id, week_start, days, eco_friendly, use_leftovers, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, params.HouseholdID, params.WeekStart.Format("2006-01-02"), mustJSON(params.Days),
		params.EcoFriendly, params.UseLeftovers, params.Notes, JobPending,
	)
	if err != nil {
		return nil, serr.Wrap(err, "failed to insert planning job")
	}
	return db.GetJob(id)
}

// GetJob loads a job by id, or nil when absent
func (db *DB) GetJob(id string) (*PlanningJob, error) {
	job := &PlanningJob{ID: id}
	var days, notes, errMsg sql.NullString
	var startedAt, finishedAt sql.NullTime
	err := db.QueryRow(
		`SELECT household_id, week_start, days, eco_friendly, use_leftovers, notes, status, error,
		        created_at, started_at, finished_at
		 FROM planning_jobs WHERE id = ?`, id,
	).Scan(&job.HouseholdID, &job.WeekStart, &days, &job.EcoFriendly, &job.UseLeftovers, &notes,
		&job.Status, &errMsg, &job.CreatedAt, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, serr.Wrap(err, "failed to load planning job")
	}

	if days.Valid && days.String != "" {
		if err := json.Unmarshal([]byte(days.String), &job.Days); err != nil {
			return nil, serr.Wrap(err, "failed to decode job days")
		}
	}
	job.Notes = notes.String
	job.Error = errMsg.String
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		job.FinishedAt = &finishedAt.Time
	}
	return job, nil
}

// MarkJobRunning flips a pending job to running
func (db *DB) MarkJobRunning(id string) error {
	_, err := db.Exec(
		`UPDATE planning_jobs SET status = ?, started_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		JobRunning, id, JobPending,
	)
	return err
}

// MarkJobCompleted moves a running job to completed
func (db *DB) MarkJobCompleted(id string) error {
	_, err := db.Exec(
		`UPDATE planning_jobs SET status = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		JobCompleted, id, JobRunning,
	)
	return err
}

// MarkJobFailed records the failure reason and finishes the job.
// Cancelled jobs stay cancelled.
func (db *DB) MarkJobFailed(id string, reason string) error {
	_, err := db.Exec(
		`UPDATE planning_jobs SET status = ?, error = ?, finished_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status IN (?, ?)`,
		JobFailed, reason, id, JobPending, JobRunning,
	)
	return err
}

// CancelJob requests cancellation of a live job. The runner notices
// the flipped status at its next day boundary. Returns ErrJobFinished
// when the job is already terminal.
func (db *DB) CancelJob(id string) error {
	result, err := db.Exec(
		`UPDATE planning_jobs SET status = ?, finished_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status IN (?, ?)`,
		JobCancelled, id, JobPending, JobRunning,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return serr.Wrap(err, "failed to read rows affected")
	}
	if affected == 0 {
		return ErrJobFinished
	}
	return nil
}

// AddJobEvent appends one progress event and returns it with its id
func (db *DB) AddJobEvent(event PlanningJobEvent) (*PlanningJobEvent, error) {
	if event.Origin == "" {
		event.Origin = "primary"
	}
	err := db.QueryRow(
		`INSERT INTO planning_job_events (job_id, day, stage, agent, origin, payload)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id, created_at`,
		event.JobID, event.Day, event.Stage, event.Agent, event.Origin, mustJSON(event.Payload),
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return nil, serr.Wrap(err, "failed to insert job event", "stage", event.Stage)
	}
	return &event, nil
}

// ListJobEventsSince returns a job's events with id greater than
// afterID, oldest first. afterID 0 returns the whole log.
func (db *DB) ListJobEventsSince(jobID string, afterID int64) ([]PlanningJobEvent, error) {
	rows, err := db.Query(
		`SELECT id, day, stage, agent, origin, payload, created_at
		 FROM planning_job_events WHERE job_id = ? AND id > ? ORDER BY id`,
		jobID, afterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []PlanningJobEvent
	for rows.Next() {
		event := PlanningJobEvent{JobID: jobID}
		var day, agent sql.NullString
		if err := rows.Scan(&event.ID, &day, &event.Stage, &agent, &event.Origin,
			&event.Payload, &event.CreatedAt); err != nil {
			return nil, serr.Wrap(err, "failed to scan job event")
		}
		event.Day = day.String
		event.Agent = agent.String
		events = append(events, event)
	}
	return events, nil
}
