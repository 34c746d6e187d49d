package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/jog"
	"jogapp-api/internal/stats"
	"jogapp-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopEventBus struct{}

func (noopEventBus) Publish(topic string, data interface{}) error        { return nil }
func (noopEventBus) Subscribe(topic string, handler interface{}) error   { return nil }
func (noopEventBus) Unsubscribe(topic string, handler interface{}) error { return nil }
func (noopEventBus) Close() error                                        { return nil }

type jogHandlerFixture struct {
	router *gin.Engine
	repo   *jog.MockJogRepository
	clock  *common.MockClock
}

func newJogHandlerFixture(t *testing.T) *jogHandlerFixture {
	gin.SetMode(gin.TestMode)

	repo := jog.NewMockJogRepository()
	statsRepo := stats.NewMockStatsRepository()
	clock := common.NewMockClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))
	log := logger.New("development")
	service := jog.NewJogService(repo, statsRepo, noopEventBus{}, clock, time.UTC, log.SugaredLogger.Desugar())

	handler := NewJogHandler(service, log)
	router := gin.New()
	router.POST("/jogs", handler.Create)
	router.GET("/users/:userId/jogs", handler.List)
	router.POST("/jogs/:id/complete", handler.Complete)
	router.POST("/jogs/:id/steps/:stepId/complete", handler.CompleteStep)
	router.DELETE("/jogs/:id", handler.Delete)

	return &jogHandlerFixture{router: router, repo: repo, clock: clock}
}

func (f *jogHandlerFixture) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func TestJogHandler_Create(t *testing.T) {
	f := newJogHandlerFixture(t)

	recorder := f.request(t, http.MethodPost, "/jogs", gin.H{
		"user_id":          "user-1",
		"title":            "morning stretch",
		"due_date":         "2025-06-15T14:00:00Z",
		"reminder_offsets": []int{5, 30},
	})

	require.Equal(t, http.StatusCreated, recorder.Code)

	var created jog.Jog
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, common.StatusUpcoming, created.CompleteStatus)
	assert.True(t, created.ReminderEnabled)
	require.Len(t, created.ReminderIntervals, 1)
	assert.Equal(t, []int{5, 30}, created.ReminderIntervals[0].Intervals)
	assert.Equal(t, 1, f.repo.JogCount())
}

func TestJogHandler_Create_RejectsUnknownOffset(t *testing.T) {
	f := newJogHandlerFixture(t)

	recorder := f.request(t, http.MethodPost, "/jogs", gin.H{
		"user_id":          "user-1",
		"title":            "morning stretch",
		"due_date":         "2025-06-15T14:00:00Z",
		"reminder_offsets": []int{7},
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 0, f.repo.JogCount())
}

func TestJogHandler_Create_MissingTitle(t *testing.T) {
	f := newJogHandlerFixture(t)

	recorder := f.request(t, http.MethodPost, "/jogs", gin.H{
		"user_id":  "user-1",
		"due_date": "2025-06-15T14:00:00Z",
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestJogHandler_List(t *testing.T) {
	f := newJogHandlerFixture(t)

	for _, title := range []string{"first", "second"} {
		recorder := f.request(t, http.MethodPost, "/jogs", gin.H{
			"user_id":  "user-1",
			"title":    title,
			"due_date": "2025-06-15T14:00:00Z",
		})
		require.Equal(t, http.StatusCreated, recorder.Code)
	}

	recorder := f.request(t, http.MethodGet, "/users/user-1/jogs", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Jogs  []*jog.Jog `json:"jogs"`
		Count int        `json:"count"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)

	// a status filter narrows the result
	recorder = f.request(t, http.MethodGet, "/users/user-1/jogs?status=overdue", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 0, response.Count)
}

func TestJogHandler_Complete(t *testing.T) {
	f := newJogHandlerFixture(t)

	recorder := f.request(t, http.MethodPost, "/jogs", gin.H{
		"user_id":  "user-1",
		"title":    "stretch",
		"due_date": "2025-06-15T14:00:00Z",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created jog.Jog
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))

	recorder = f.request(t, http.MethodPost, fmt.Sprintf("/jogs/%s/complete", created.ID), nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// repeat completion conflicts
	recorder = f.request(t, http.MethodPost, fmt.Sprintf("/jogs/%s/complete", created.ID), nil)
	assert.Equal(t, http.StatusConflict, recorder.Code)

	stored, err := f.repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, common.StatusCompletedOnTime, stored.CompleteStatus)
}

func TestJogHandler_Complete_NotFound(t *testing.T) {
	f := newJogHandlerFixture(t)

	recorder := f.request(t, http.MethodPost, "/jogs/missing/complete", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestJogHandler_CompleteStep(t *testing.T) {
	f := newJogHandlerFixture(t)

	recorder := f.request(t, http.MethodPost, "/jogs", gin.H{
		"user_id":       "user-1",
		"title":         "morning routine",
		"due_date":      "2025-06-15T14:00:00Z",
		"is_step_based": true,
		"steps": []gin.H{
			{"title": "shower", "due_date": "2025-06-15T09:30:00Z"},
			{"title": "breakfast", "due_date": "2025-06-15T10:00:00Z"},
		},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created jog.Jog
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	require.Len(t, created.Steps, 2)

	recorder = f.request(t, http.MethodPost,
		fmt.Sprintf("/jogs/%s/steps/%s/complete", created.ID, created.Steps[0].ID), nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = f.request(t, http.MethodPost,
		fmt.Sprintf("/jogs/%s/steps/unknown/complete", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestJogHandler_Delete(t *testing.T) {
	f := newJogHandlerFixture(t)

	recorder := f.request(t, http.MethodPost, "/jogs", gin.H{
		"user_id":  "user-1",
		"title":    "stretch",
		"due_date": "2025-06-15T14:00:00Z",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created jog.Jog
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))

	recorder = f.request(t, http.MethodDelete, fmt.Sprintf("/jogs/%s", created.ID), nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// repeat delete conflicts
	recorder = f.request(t, http.MethodDelete, fmt.Sprintf("/jogs/%s", created.ID), nil)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}
