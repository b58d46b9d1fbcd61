package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fknsrs.biz/p/sorm"

	"fknsrs.biz/p/ytsnap/internal/ctxdb"
	"fknsrs.biz/p/ytsnap/internal/jobqueue"
)

type JobUpdate struct {
	ID       int    `json:"id"`
	Progress *int   `json:"progress"`
	Status   string `json:"status"`
}

// JobsSSE streams job progress changes as server-sent events. An
// update is emitted the first time a job is seen and whenever its
// progress value changes after that.
func JobsSSE(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/event-stream")
	rw.Header().Set("Cache-Control", "no-cache")
	rw.Header().Set("Connection", "keep-alive")
	rw.Header().Set("Access-Control-Allow-Origin", "*")

	ctx := r.Context()

	lastProgress := make(map[int]*int)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var jobs []jobqueue.Job
			if err := sorm.FindWhere(ctx, ctxdb.GetDB(ctx), &jobs, "where finished_at is null order by id desc limit 100"); err != nil {
				continue
			}

			for _, job := range jobs {
				var status string
				if job.FinishedAt != nil {
					status = "finished"
				} else if job.ReservedAt != nil {
					status = "running"
				} else {
					status = "pending"
				}

				last, seen := lastProgress[job.ID]

				changed := !seen
				switch {
				case job.Progress == nil && last != nil:
					changed = true
				case job.Progress != nil && last == nil:
					changed = true
				case job.Progress != nil && last != nil && *job.Progress != *last:
					changed = true
				}

				if !changed {
					continue
				}

				d, err := json.Marshal(JobUpdate{ID: job.ID, Progress: job.Progress, Status: status})
				if err != nil {
					continue
				}

				fmt.Fprintf(rw, "data: %s\n\n", d)
				if f, ok := rw.(http.Flusher); ok {
					f.Flush()
				}

				lastProgress[job.ID] = job.Progress
			}
		}
	}
}
