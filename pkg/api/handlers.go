package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/config"
	"github.com/ovokpus/PostAssist/pkg/models"
	"github.com/ovokpus/PostAssist/pkg/queue"
)

// estimatedTaskDuration is the advertised completion window for one
// generation task.
const estimatedTaskDuration = 3 * time.Minute

func (s *Server) handleGeneratePost(c *gin.Context) {
	var req GeneratePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, err, "invalid request body"))
		return
	}
	req.applyDefaults()
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}

	task := models.NewTask(uuid.NewString(), req.requestData())
	if err := s.tasks.Submit(c.Request.Context(), task); err != nil {
		respondError(c, err)
		return
	}

	s.logger.Info("generation task accepted", "task_id", task.TaskID, "paper_title", req.PaperTitle)
	c.JSON(http.StatusAccepted, GeneratePostResponse{
		TaskID:                  task.TaskID,
		Status:                  string(models.TaskPending),
		Message:                 "post generation started",
		EstimatedCompletionTime: time.Now().UTC().Add(estimatedTaskDuration),
	})
}

func (s *Server) handleTaskStatus(c *gin.Context) {
	task, err := s.tasks.Get(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if err := s.tasks.Delete(c.Request.Context(), taskID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "task deleted", TaskID: taskID})
}

func (s *Server) handleCancelTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if err := s.tasks.Cancel(c.Request.Context(), taskID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "cancellation requested", TaskID: taskID})
}

func (s *Server) handleVerifyPost(c *gin.Context) {
	var req VerifyPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, err, "invalid request body"))
		return
	}
	req.applyDefaults()
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}

	report, err := s.verifier.Verify(c.Request.Context(), queue.VerifyRequest{
		PostContent:    req.PostContent,
		PaperReference: req.PaperReference,
		Type:           config.VerificationType(req.VerificationType),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyPostResponse{
		VerificationID:     uuid.NewString(),
		VerificationReport: report,
	})
}

func (s *Server) handleBatchGenerate(c *gin.Context) {
	var req BatchGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, err, "invalid request body"))
		return
	}
	req.applyDefaults()
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}

	batchID := uuid.NewString()
	taskIDs := make([]string, 0, len(req.Papers))
	for i := range req.Papers {
		task := models.NewTask(uuid.NewString(), req.Papers[i].requestData())
		task.BatchID = batchID
		if err := s.tasks.Submit(c.Request.Context(), task); err != nil {
			// Already-accepted papers keep running; the client gets the
			// failure for the rest.
			s.logger.Warn("batch submit failed partway",
				"batch_id", batchID, "accepted", len(taskIDs), "error", err)
			respondError(c, err)
			return
		}
		taskIDs = append(taskIDs, task.TaskID)
	}

	s.logger.Info("batch accepted", "batch_id", batchID, "total_posts", len(taskIDs))
	c.JSON(http.StatusAccepted, BatchGenerateResponse{
		BatchID:                 batchID,
		TotalPosts:              len(taskIDs),
		TaskIDs:                 taskIDs,
		SchedulePosts:           req.SchedulePosts,
		TimeIntervalMinutes:     req.TimeIntervalMinutes,
		EstimatedCompletionTime: time.Now().UTC().Add(time.Duration(len(taskIDs)) * estimatedTaskDuration),
	})
}
