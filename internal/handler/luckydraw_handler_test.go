package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/testofislamworld/islamic-quiz-backend/internal/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// ============================================================================
// Request validation tests — не требуют реального LuckyDrawService
// Handler возвращает 400 до вызова сервиса
// ============================================================================

func TestCreateDraw_ValidationErrors(t *testing.T) {
	handler := &LuckyDrawHandler{} // nil service — OK для validation tests

	futureDate := time.Now().Add(48 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "empty body",
			body:       nil,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing name",
			body: map[string]interface{}{
				"category_id":    1,
				"scheduled_date": futureDate,
				"prizes":         []map[string]interface{}{{"name": "Umrah trip", "quantity": 1}},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing prizes",
			body: map[string]interface{}{
				"category_id":    1,
				"name":           "Ramadan Draw",
				"scheduled_date": futureDate,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "prize with zero quantity",
			body: map[string]interface{}{
				"category_id":    1,
				"name":           "Ramadan Draw",
				"scheduled_date": futureDate,
				"prizes":         []map[string]interface{}{{"name": "Umrah trip", "quantity": 0}},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing category",
			body: map[string]interface{}{
				"name":           "Ramadan Draw",
				"scheduled_date": futureDate,
				"prizes":         []map[string]interface{}{{"name": "Umrah trip", "quantity": 1}},
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext(http.MethodPost, "/api/admin/luckydraw", tt.body)

			handler.CreateDraw(c)

			assert.Equal(t, tt.wantStatus, w.Code, "Статус ответа должен быть %d", tt.wantStatus)
			resp := parseJSONResponse(t, w)
			assert.Contains(t, resp, "error", "Ответ должен содержать поле error")
		})
	}
}

func TestCancelDraw_RejectsMalformedBody(t *testing.T) {
	handler := &LuckyDrawHandler{}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/admin/luckydraw/1/cancel", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("drawID", uint(1))

	handler.CancelDraw(c)

	assert.Equal(t, http.StatusBadRequest, w.Code, "Некорректный JSON должен возвращать 400")
}

func TestRescheduleDraw_RequiresDate(t *testing.T) {
	handler := &LuckyDrawHandler{}

	c, w := newTestGinContext(http.MethodPost, "/api/admin/luckydraw/1/reschedule", map[string]string{})
	c.Set("drawID", uint(1))

	handler.RescheduleDraw(c)

	assert.Equal(t, http.StatusBadRequest, w.Code, "Перенос без даты должен возвращать 400")
}

func TestHandleDrawError_StatusMapping(t *testing.T) {
	handler := &LuckyDrawHandler{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", fmt.Errorf("%w: lucky draw not found", apperrors.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: draw already executed today", apperrors.ErrConflict), http.StatusConflict},
		{"validation", fmt.Errorf("%w: scheduled date must be in the future", apperrors.ErrValidation), http.StatusUnprocessableEntity},
		{"forbidden", fmt.Errorf("%w: admin only", apperrors.ErrForbidden), http.StatusForbidden},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext(http.MethodGet, "/api/admin/luckydraw/1", nil)

			handler.handleDrawError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code, "Ошибка %v должна маппиться в статус %d", tt.err, tt.wantStatus)
		})
	}
}
