package game

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ReC82/LodyLand/internal/state"
	"github.com/ReC82/LodyLand/internal/telemetry"
)

type CraftResult struct {
	ItemKey  string             `json:"item_key"`
	Times    int                `json:"times"`
	Crafted  int                `json:"crafted,omitempty"` // immediate recipes only
	Job      *JobView           `json:"job,omitempty"`     // timed recipes only
	Consumed map[string]float64 `json:"consumed"`
	Stocks   map[string]float64 `json:"stocks"`
	Items    map[string]int     `json:"items"`
}

// Craft executes a recipe `times` times at a craft location. Inputs are
// checked and debited atomically; a recipe with a craft time starts a job
// instead of producing immediately.
func (e Engine) Craft(ctx context.Context, playerID int64, itemKey, location string, times int) (CraftResult, error) {
	if times < 1 {
		return CraftResult{}, newErr(CodeInvalidQuantity, "times must be at least 1")
	}
	var res CraftResult
	now := e.Clock.Now()

	_, err := e.State.Update(ctx, playerID, func(s *state.PlayerState) error {
		rc, ok := e.Content.Recipe(itemKey, location)
		if !ok {
			return newErr(CodeRecipeNotFound, "no recipe for %q at %q", itemKey, location)
		}
		if s.Player.Level < rc.MinLevel {
			return &Error{
				Code:     CodeLevelTooLow,
				Message:  "level too low to craft",
				Required: float64(rc.MinLevel),
				Current:  float64(s.Player.Level),
			}
		}

		b := e.bundle(s)
		if b.TableLevel() < rc.RequiredTableLevel {
			return &Error{
				Code:     CodeCraftTableTooLow,
				Message:  "craft table level too low",
				Required: float64(rc.RequiredTableLevel),
				Current:  float64(b.TableLevel()),
			}
		}

		required := rc.RequiredResources(times)
		missing := map[string]float64{}
		for key, qty := range required {
			if have := s.Stocks[key]; have < qty {
				missing[key] = roundHalfUp(qty - have)
			}
		}
		if len(missing) > 0 {
			return &Error{Code: CodeNotEnoughRes, Message: "missing craft inputs", Missing: missing}
		}

		timed := rc.CraftTimeSeconds > 0
		if timed {
			slots := 1 + b.CraftSlotBonus()
			if runningJobs(s, now) >= slots {
				return &Error{
					Code:     CodeCraftSlotsBusy,
					Message:  "all craft slots are busy",
					Required: float64(slots),
				}
			}
		}

		for key, qty := range required {
			s.Stocks[key] = roundHalfUp(s.Stocks[key] - qty)
		}

		res = CraftResult{ItemKey: itemKey, Times: times, Consumed: required}
		if timed {
			dur := time.Duration(float64(rc.CraftTimeSeconds)*float64(times)/b.CraftSpeedMultiplier()) * time.Second
			job := state.CraftJob{
				ID:        uuid.NewString(),
				ItemKey:   itemKey,
				OutputQty: rc.OutputQuantity * times,
				StartedAt: now,
				Duration:  dur,
				Status:    state.JobRunning,
			}
			s.Jobs = append(s.Jobs, job)
			res.Job = &JobView{
				ID:        job.ID,
				ItemKey:   job.ItemKey,
				OutputQty: job.OutputQty,
				StartedAt: job.StartedAt,
				ReadyAt:   job.ReadyAt(),
				Status:    string(job.Status),
			}
		} else {
			crafted := rc.OutputQuantity * times
			s.Items[itemKey] += crafted
			res.Crafted = crafted
		}
		res.Stocks = s.Stocks
		res.Items = s.Items
		return nil
	})
	if err != nil {
		return CraftResult{}, translateStateErr(err)
	}

	e.record(telemetry.EventCraftStarted, telemetry.EventMetadata{
		"player": playerID,
		"item":   itemKey,
		"times":  times,
		"timed":  res.Job != nil,
	})
	return res, nil
}

type ClaimCraftResult struct {
	JobID   string         `json:"job_id"`
	ItemKey string         `json:"item_key"`
	Gained  int            `json:"gained"`
	Items   map[string]int `json:"items"`
}

// ClaimCraft collects the output of a finished job. Completion is evaluated
// lazily against the clock; nothing ticks in the background.
func (e Engine) ClaimCraft(ctx context.Context, playerID int64, jobID string) (ClaimCraftResult, error) {
	var res ClaimCraftResult
	now := e.Clock.Now()

	_, err := e.State.Update(ctx, playerID, func(s *state.PlayerState) error {
		job := s.Job(jobID)
		if job == nil {
			return newErr(CodeJobNotFound, "no job %q", jobID)
		}
		if job.Status == state.JobClaimed {
			return newErr(CodeJobClaimed, "job already claimed")
		}
		if now.Before(job.ReadyAt()) {
			readyAt := job.ReadyAt()
			return &Error{Code: CodeJobNotReady, Message: "craft still in progress", Until: &readyAt}
		}

		job.Status = state.JobClaimed
		s.Items[job.ItemKey] += job.OutputQty

		res = ClaimCraftResult{
			JobID:   job.ID,
			ItemKey: job.ItemKey,
			Gained:  job.OutputQty,
			Items:   s.Items,
		}
		return nil
	})
	if err != nil {
		return ClaimCraftResult{}, translateStateErr(err)
	}

	e.record(telemetry.EventCraftClaimed, telemetry.EventMetadata{
		"player": playerID,
		"item":   res.ItemKey,
		"gained": res.Gained,
	})
	return res, nil
}

func runningJobs(s *state.PlayerState, now time.Time) int {
	n := 0
	for _, j := range s.Jobs {
		if j.Status == state.JobRunning && now.Before(j.ReadyAt()) {
			n++
		}
	}
	return n
}
