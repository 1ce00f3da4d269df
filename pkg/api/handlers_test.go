package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/config"
	"github.com/ovokpus/PostAssist/pkg/models"
	"github.com/ovokpus/PostAssist/pkg/queue"
	"github.com/ovokpus/PostAssist/pkg/store"
)

// stubService records submissions and serves canned tasks.
type stubService struct {
	submitted []*models.Task
	submitErr error
	tasks     map[string]*models.Task
	cancelErr error
	deleteErr error
}

func newStubService() *stubService {
	return &stubService{tasks: make(map[string]*models.Task)}
}

func (s *stubService) Submit(_ context.Context, task *models.Task) error {
	if s.submitErr != nil {
		return s.submitErr
	}
	s.submitted = append(s.submitted, task)
	s.tasks[task.TaskID] = task
	return nil
}

func (s *stubService) Get(_ context.Context, taskID string) (*models.Task, error) {
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "task %s not found", taskID)
	}
	return task, nil
}

func (s *stubService) List(_ context.Context) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *stubService) Cancel(_ context.Context, taskID string) error {
	if s.cancelErr != nil {
		return s.cancelErr
	}
	if _, ok := s.tasks[taskID]; !ok {
		return apperr.New(apperr.KindNotFound, "task %s not found", taskID)
	}
	return nil
}

func (s *stubService) Delete(_ context.Context, taskID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.tasks[taskID]; !ok {
		return apperr.New(apperr.KindNotFound, "task %s not found", taskID)
	}
	delete(s.tasks, taskID)
	return nil
}

type stubVerifier struct {
	report *models.VerificationReport
	err    error
	got    queue.VerifyRequest
}

func (v *stubVerifier) Verify(_ context.Context, req queue.VerifyRequest) (*models.VerificationReport, error) {
	v.got = req
	if v.err != nil {
		return nil, v.err
	}
	return v.report, nil
}

type stubHealth string

func (h stubHealth) Health(context.Context) string { return string(h) }

func testConfig() *config.Config {
	return &config.Config{
		HTTPPort: "8000",
		LLM:      config.LLMConfig{APIKey: "sk-test"},
		Search:   config.SearchConfig{APIKey: "tvly-test"},
	}
}

func newTestServer(svc *stubService, verifier *stubVerifier) *Server {
	return NewServer(testConfig(), svc, verifier, stubHealth(store.HealthConnected), nil)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Kind
}

func TestGeneratePostAccepted(t *testing.T) {
	svc := newStubService()
	router := newTestServer(svc, &stubVerifier{}).Router()

	rec := doJSON(t, router, http.MethodPost, "/generate-post", map[string]any{
		"paper_title": "Attention Is All You Need",
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	resp := decode[GeneratePostResponse](t, rec)
	assert.NotEmpty(t, resp.TaskID)
	assert.Equal(t, string(models.TaskPending), resp.Status)
	assert.True(t, resp.EstimatedCompletionTime.After(time.Now()))

	require.Len(t, svc.submitted, 1)
	data := svc.submitted[0].RequestData
	assert.Equal(t, "Attention Is All You Need", data["paper_title"])
	assert.Equal(t, "professional", data["target_audience"])
	assert.Equal(t, "professional", data["tone"])
	assert.Equal(t, true, data["include_technical_details"])
	assert.Equal(t, float64(10), data["max_hashtags"])
}

func TestGeneratePostValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"title too short", map[string]any{"paper_title": "hi"}},
		{"title too long", map[string]any{"paper_title": strings.Repeat("x", 501)}},
		{"bad audience", map[string]any{"paper_title": "Valid Paper Title", "target_audience": "aliens"}},
		{"bad tone", map[string]any{"paper_title": "Valid Paper Title", "tone": "sarcastic"}},
		{"too many hashtags", map[string]any{"paper_title": "Valid Paper Title", "max_hashtags": 25}},
		{"context too long", map[string]any{
			"paper_title":        "Valid Paper Title",
			"additional_context": strings.Repeat("c", 1001),
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newStubService()
			router := newTestServer(svc, &stubVerifier{}).Router()
			rec := doJSON(t, router, http.MethodPost, "/generate-post", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(apperr.KindValidation), errorKind(t, rec))
			assert.Empty(t, svc.submitted)
		})
	}
}

func TestGeneratePostMalformedJSON(t *testing.T) {
	router := newTestServer(newStubService(), &stubVerifier{}).Router()
	req := httptest.NewRequest(http.MethodPost, "/generate-post", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskStatus(t *testing.T) {
	svc := newStubService()
	svc.tasks["t-1"] = models.NewTask("t-1", map[string]any{"paper_title": "Paper"})
	router := newTestServer(svc, &stubVerifier{}).Router()

	rec := doJSON(t, router, http.MethodGet, "/status/t-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task := decode[models.Task](t, rec)
	assert.Equal(t, "t-1", task.TaskID)
	assert.Equal(t, models.TaskPending, task.Status)

	rec = doJSON(t, router, http.MethodGet, "/status/absent", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(apperr.KindNotFound), errorKind(t, rec))
}

func TestListTasks(t *testing.T) {
	svc := newStubService()
	svc.tasks["t-1"] = models.NewTask("t-1", nil)
	svc.tasks["t-2"] = models.NewTask("t-2", nil)
	router := newTestServer(svc, &stubVerifier{}).Router()

	rec := doJSON(t, router, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]models.Task](t, rec)
	assert.Len(t, tasks, 2)
}

func TestListTasksEmpty(t *testing.T) {
	router := newTestServer(newStubService(), &stubVerifier{}).Router()
	rec := doJSON(t, router, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestCancelTask(t *testing.T) {
	svc := newStubService()
	svc.tasks["running"] = models.NewTask("running", nil)
	router := newTestServer(svc, &stubVerifier{}).Router()

	rec := doJSON(t, router, http.MethodPost, "/tasks/running/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[MessageResponse](t, rec)
	assert.Equal(t, "running", resp.TaskID)

	rec = doJSON(t, router, http.MethodPost, "/tasks/absent/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.cancelErr = apperr.New(apperr.KindValidation, "task done is not running (status COMPLETED)")
	rec = doJSON(t, router, http.MethodPost, "/tasks/done/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTask(t *testing.T) {
	svc := newStubService()
	svc.tasks["t-del"] = models.NewTask("t-del", nil)
	router := newTestServer(svc, &stubVerifier{}).Router()

	rec := doJSON(t, router, http.MethodDelete, "/tasks/t-del", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, svc.tasks, "t-del")

	rec = doJSON(t, router, http.MethodDelete, "/tasks/t-del", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyPost(t *testing.T) {
	verifier := &stubVerifier{report: &models.VerificationReport{
		Technical:    &models.ReportSection{Score: 0.95},
		Style:        &models.ReportSection{Score: 0.88},
		OverallScore: 0.915,
		Rating:       models.RatingExcellent,
		VerifiedAt:   time.Now().UTC(),
	}}
	router := newTestServer(newStubService(), verifier).Router()

	rec := doJSON(t, router, http.MethodPost, "/verify-post", map[string]any{
		"post_content":    "Great new paper on transformers! #AI",
		"paper_reference": "Attention Is All You Need",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[VerifyPostResponse](t, rec)
	assert.NotEmpty(t, resp.VerificationID)
	assert.InDelta(t, 0.915, resp.OverallScore, 1e-9)
	assert.Equal(t, models.RatingExcellent, resp.Rating)
	assert.False(t, resp.VerifiedAt.IsZero())

	// Omitted verification_type defaults to both.
	assert.Equal(t, config.VerificationBoth, verifier.got.Type)
}

func TestVerifyPostValidation(t *testing.T) {
	router := newTestServer(newStubService(), &stubVerifier{}).Router()

	rec := doJSON(t, router, http.MethodPost, "/verify-post", map[string]any{
		"post_content":      "content",
		"verification_type": "spelling",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/verify-post", map[string]any{
		"verification_type": "both",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyPostTimeout(t *testing.T) {
	verifier := &stubVerifier{err: apperr.New(apperr.KindTimeout, "verification deadline exceeded")}
	router := newTestServer(newStubService(), verifier).Router()

	rec := doJSON(t, router, http.MethodPost, "/verify-post", map[string]any{
		"post_content": "content to check",
	})
	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Equal(t, string(apperr.KindTimeout), errorKind(t, rec))
}

func TestBatchGenerate(t *testing.T) {
	svc := newStubService()
	router := newTestServer(svc, &stubVerifier{}).Router()

	rec := doJSON(t, router, http.MethodPost, "/batch-generate", map[string]any{
		"papers": []map[string]any{
			{"paper_title": "Attention Is All You Need"},
			{"paper_title": "BERT: Pre-training of Deep Bidirectional Transformers"},
			{"paper_title": "Language Models are Few-Shot Learners"},
		},
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	resp := decode[BatchGenerateResponse](t, rec)
	assert.NotEmpty(t, resp.BatchID)
	assert.Equal(t, 3, resp.TotalPosts)
	assert.Len(t, resp.TaskIDs, 3)

	require.Len(t, svc.submitted, 3)
	for _, task := range svc.submitted {
		assert.Equal(t, resp.BatchID, task.BatchID)
	}
}

func TestBatchGenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"no papers", map[string]any{"papers": []map[string]any{}}},
		{"too many papers", map[string]any{"papers": []map[string]any{
			{"paper_title": "Paper One Title"}, {"paper_title": "Paper Two Title"},
			{"paper_title": "Paper Three Title"}, {"paper_title": "Paper Four Title"},
			{"paper_title": "Paper Five Title"}, {"paper_title": "Paper Six Title"},
		}}},
		{"invalid paper in batch", map[string]any{"papers": []map[string]any{
			{"paper_title": "Valid Paper Title"}, {"paper_title": "no"},
		}}},
		{"interval out of range", map[string]any{
			"papers":                []map[string]any{{"paper_title": "Valid Paper Title"}},
			"time_interval_minutes": 10,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newStubService()
			router := newTestServer(svc, &stubVerifier{}).Router()
			rec := doJSON(t, router, http.MethodPost, "/batch-generate", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.submitted)
		})
	}
}

func TestBatchGenerateScheduleDefaults(t *testing.T) {
	svc := newStubService()
	router := newTestServer(svc, &stubVerifier{}).Router()

	rec := doJSON(t, router, http.MethodPost, "/batch-generate", map[string]any{
		"papers":         []map[string]any{{"paper_title": "Valid Paper Title"}},
		"schedule_posts": true,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	resp := decode[BatchGenerateResponse](t, rec)
	assert.True(t, resp.SchedulePosts)
	assert.Equal(t, 30, resp.TimeIntervalMinutes)
}
