package handler

import (
	"time"

	"current-account-ledger/internal/adapter/http/dto"
	"current-account-ledger/internal/core/ports"
	"current-account-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// JobHandler runs batch jobs on demand.
type JobHandler struct {
	jobs ports.JobTrigger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs ports.JobTrigger) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Run handles POST /api/v1/jobs/:job/run. The call blocks until the run
// finishes.
func (h *JobHandler) Run(c *gin.Context) {
	report, err := h.jobs.Trigger(c.Request.Context(), c.Param("job"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toBatchReportResponse(report))
}

func toBatchReportResponse(r *ports.BatchReport) dto.BatchReportResponse {
	return dto.BatchReportResponse{
		Job:        r.Job,
		Till:       r.Till.Format(time.RFC3339Nano),
		Selected:   r.Selected,
		Succeeded:  r.Succeeded,
		Failed:     r.Failed,
		DurationMS: r.Duration.Milliseconds(),
	}
}
