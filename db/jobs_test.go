package db

import (
	"testing"
)

func TestCreateJobCarriesPlanningOptions(t *testing.T) {
	database := openTestDB(t)
	household, err := database.CreateHousehold(HouseholdParams{Name: "Job House"})
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	job, err := database.CreateJob(CreateJobParams{
		HouseholdID:  household.ID,
		WeekStart:    testWeek(),
		Days:         []string{"Mon", "Tue"},
		EcoFriendly:  true,
		UseLeftovers: true,
		Notes:        "guests on Tuesday",
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	loaded, err := database.GetJob(job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if loaded == nil {
		t.Fatal("job should exist after creation")
	}
	if loaded.Status != JobPending {
		t.Errorf("new job should be pending, got %s", loaded.Status)
	}
	if !loaded.EcoFriendly || !loaded.UseLeftovers {
		t.Errorf("planning flags did not round-trip: %+v", loaded)
	}
	if loaded.Notes != "guests on Tuesday" {
		t.Errorf("notes did not round-trip: %q", loaded.Notes)
	}
	if len(loaded.Days) != 2 || loaded.Days[0] != "Mon" {
		t.Errorf("days did not round-trip: %v", loaded.Days)
	}
}

func TestCancelJobRefusesTerminalStates(t *testing.T) {
	database := openTestDB(t)
	household, err := database.CreateHousehold(HouseholdParams{Name: "Cancel House"})
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	job, err := database.CreateJob(CreateJobParams{HouseholdID: household.ID, WeekStart: testWeek()})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	if err := database.MarkJobRunning(job.ID); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	if err := database.MarkJobCompleted(job.ID); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	if err := database.CancelJob(job.ID); err != ErrJobFinished {
		t.Errorf("cancel of a completed job should report ErrJobFinished, got %v", err)
	}

	loaded, _ := database.GetJob(job.ID)
	if loaded.Status != JobCompleted {
		t.Errorf("completed status must not be overwritten, got %s", loaded.Status)
	}
}
