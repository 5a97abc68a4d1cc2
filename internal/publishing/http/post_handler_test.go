package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/postflow/internal/errors"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
	"github.com/allisson/postflow/internal/publishing/http/dto"
	"github.com/allisson/postflow/internal/publishing/usecase/mocks"
)

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*PostHandler, *mocks.MockPostUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockPostUseCase := mocks.NewMockPostUseCase(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewPostHandler(mockPostUseCase, logger), mockPostUseCase
}

func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			bodyReader = bytes.NewBufferString(raw)
		} else {
			bodyBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(bodyBytes)
		}
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func testPost(status publishingDomain.PostStatus) *publishingDomain.Post {
	now := time.Now().UTC()
	return &publishingDomain.Post{
		ID:          uuid.Must(uuid.NewV7()),
		WorkspaceID: uuid.Must(uuid.NewV7()),
		Status:      status,
		Content:     publishingDomain.Content{Text: "We are live"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPostHandler_CreateHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		post := testPost(publishingDomain.PostStatusDraft)

		mockUseCase.On("Create", mock.Anything, post.WorkspaceID, publishingDomain.Content{Text: "We are live"}).
			Return(post, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/posts", dto.CreatePostRequest{
			WorkspaceID: post.WorkspaceID.String(),
			Content:     dto.ContentRequest{Text: "We are live"},
		})

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		response := decode[dto.PostResponse](t, w)
		assert.Equal(t, post.ID.String(), response.ID)
		assert.Equal(t, "draft", response.Status)
		assert.Equal(t, "We are live", response.Content.Text)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/posts", "{not json")

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decode[map[string]any](t, w)["error"])
	})

	t.Run("Error_ValidationFailed", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/posts", dto.CreatePostRequest{WorkspaceID: "acme"})

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		response := decode[map[string]any](t, w)
		assert.Equal(t, "validation_error", response["error"])
		assert.Contains(t, response["message"], "workspace_id")
	})
}

func TestPostHandler_GetHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		post := testPost(publishingDomain.PostStatusScheduled)
		mockUseCase.On("Get", mock.Anything, post.ID).Return(post, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/posts/"+post.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: post.ID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "scheduled", decode[dto.PostResponse](t, w).Status)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		postID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Get", mock.Anything, postID).Return(nil, publishingDomain.ErrPostNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/v1/posts/"+postID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: postID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decode[map[string]any](t, w)["error"])
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/posts/latest", nil)
		c.Params = gin.Params{{Key: "id", Value: "latest"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode[map[string]any](t, w)["message"], "invalid id")
	})
}

func TestPostHandler_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		handler func(h *PostHandler) gin.HandlerFunc
	}{
		{name: "submit", method: "Submit", handler: func(h *PostHandler) gin.HandlerFunc { return h.SubmitHandler }},
		{name: "approve", method: "Approve", handler: func(h *PostHandler) gin.HandlerFunc { return h.ApproveHandler }},
		{name: "cancel", method: "Cancel", handler: func(h *PostHandler) gin.HandlerFunc { return h.CancelHandler }},
		{name: "publish", method: "PublishNow", handler: func(h *PostHandler) gin.HandlerFunc { return h.PublishHandler }},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_Success", func(t *testing.T) {
			handler, mockUseCase := setupTestHandler(t)
			post := testPost(publishingDomain.PostStatusApproved)
			mockUseCase.On(tt.method, mock.Anything, post.ID).Return(post, nil).Once()

			c, w := createTestContext(http.MethodPost, "/v1/posts/"+post.ID.String()+"/"+tt.name, nil)
			c.Params = gin.Params{{Key: "id", Value: post.ID.String()}}

			tt.handler(handler)(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, post.ID.String(), decode[dto.PostResponse](t, w).ID)
		})

		t.Run(tt.name+"_Conflict", func(t *testing.T) {
			handler, mockUseCase := setupTestHandler(t)
			postID := uuid.Must(uuid.NewV7())
			mockUseCase.On(tt.method, mock.Anything, postID).
				Return(nil, apperrors.Wrapf(publishingDomain.ErrInvalidPostTransition, "cannot %s", tt.name)).
				Once()

			c, w := createTestContext(http.MethodPost, "/v1/posts/"+postID.String()+"/"+tt.name, nil)
			c.Params = gin.Params{{Key: "id", Value: postID.String()}}

			tt.handler(handler)(c)

			assert.Equal(t, http.StatusConflict, w.Code)
			assert.Equal(t, "conflict", decode[map[string]any](t, w)["error"])
		})
	}
}

func TestPostHandler_SubmitHandler_NoTargets(t *testing.T) {
	handler, mockUseCase := setupTestHandler(t)
	postID := uuid.Must(uuid.NewV7())
	mockUseCase.On("Submit", mock.Anything, postID).Return(nil, publishingDomain.ErrNoTargets).Once()

	c, w := createTestContext(http.MethodPost, "/v1/posts/"+postID.String()+"/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: postID.String()}}

	handler.SubmitHandler(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	response := decode[map[string]any](t, w)
	assert.Equal(t, "invalid_input", response["error"])
	assert.Contains(t, response["message"], "post has no targets")
}

func TestPostHandler_RejectHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		post := testPost(publishingDomain.PostStatusRejected)
		reason := "Wrong launch date"
		post.RejectionReason = &reason
		mockUseCase.On("Reject", mock.Anything, post.ID, reason).Return(post, nil).Once()

		c, w := createTestContext(http.MethodPost, "/", dto.RejectPostRequest{Reason: reason})
		c.Params = gin.Params{{Key: "id", Value: post.ID.String()}}

		handler.RejectHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[dto.PostResponse](t, w)
		require.NotNil(t, response.RejectionReason)
		assert.Equal(t, reason, *response.RejectionReason)
	})

	t.Run("Error_MissingReason", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/", dto.RejectPostRequest{})
		c.Params = gin.Params{{Key: "id", Value: uuid.Must(uuid.NewV7()).String()}}

		handler.RejectHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestPostHandler_ScheduleHandlers(t *testing.T) {
	at := time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC)

	t.Run("Schedule_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		post := testPost(publishingDomain.PostStatusScheduled)
		post.ScheduledAt = &at
		post.Timezone = "America/Sao_Paulo"
		mockUseCase.On("Schedule", mock.Anything, post.ID, mock.MatchedBy(at.Equal), "America/Sao_Paulo").
			Return(post, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/", map[string]string{
			"scheduled_at": "2030-01-02T12:04:05-03:00",
			"timezone":     "America/Sao_Paulo",
		})
		c.Params = gin.Params{{Key: "id", Value: post.ID.String()}}

		handler.ScheduleHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[dto.PostResponse](t, w)
		require.NotNil(t, response.ScheduledAt)
		assert.True(t, at.Equal(*response.ScheduledAt))
	})

	t.Run("Schedule_PastTime", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		postID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Schedule", mock.Anything, postID, mock.AnythingOfType("time.Time"), "").
			Return(nil, publishingDomain.ErrScheduleNotInFuture).
			Once()

		c, w := createTestContext(http.MethodPost, "/", map[string]string{"scheduled_at": "2001-01-01T00:00:00Z"})
		c.Params = gin.Params{{Key: "id", Value: postID.String()}}

		handler.ScheduleHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Reschedule_InvalidTimezone", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/", map[string]string{
			"scheduled_at": "2030-01-02T12:04:05Z",
			"timezone":     "Gondor/Minas_Tirith",
		})
		c.Params = gin.Params{{Key: "id", Value: uuid.Must(uuid.NewV7()).String()}}

		handler.RescheduleHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode[map[string]any](t, w)["message"], "timezone")
	})
}

func TestPostHandler_RetryHandler(t *testing.T) {
	t.Run("Success_RetriesThenPublishes", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		post := testPost(publishingDomain.PostStatusPublished)
		retried := *post
		retried.Status = publishingDomain.PostStatusPublishing
		mockUseCase.On("RetryFailed", mock.Anything, post.ID).Return(&retried, nil).Once()
		mockUseCase.On("PublishPending", mock.Anything, post.ID).Return(post, nil).Once()

		c, w := createTestContext(http.MethodPost, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: post.ID.String()}}

		handler.RetryHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "published", decode[dto.PostResponse](t, w).Status)
	})

	t.Run("Error_NothingToRetry", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		postID := uuid.Must(uuid.NewV7())
		mockUseCase.On("RetryFailed", mock.Anything, postID).Return(nil, publishingDomain.ErrNothingToRetry).Once()

		c, w := createTestContext(http.MethodPost, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: postID.String()}}

		handler.RetryHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		mockUseCase.AssertNotCalled(t, "PublishPending", mock.Anything, mock.Anything)
	})
}

func TestPostHandler_EditContentHandler(t *testing.T) {
	handler, mockUseCase := setupTestHandler(t)
	post := testPost(publishingDomain.PostStatusDraft)
	content := publishingDomain.Content{Text: "Edited", Link: "https://example.com"}
	mockUseCase.On("EditContent", mock.Anything, post.ID, content).Return(post, nil).Once()

	c, w := createTestContext(http.MethodPut, "/", dto.ContentRequest{Text: "Edited", Link: "https://example.com"})
	c.Params = gin.Params{{Key: "id", Value: post.ID.String()}}

	handler.EditContentHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostHandler_DeleteHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		postID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Delete", mock.Anything, postID).Return(nil).Once()

		c, w := createTestContext(http.MethodDelete, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: postID.String()}}

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("Error_InternalFailureHidesDetails", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		postID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Delete", mock.Anything, postID).Return(assert.AnError).Once()

		c, w := createTestContext(http.MethodDelete, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: postID.String()}}

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	})
}

func TestPostHandler_TargetHandlers(t *testing.T) {
	post := testPost(publishingDomain.PostStatusDraft)
	accountID := uuid.Must(uuid.NewV7())
	target := publishingDomain.NewPostTarget(post.ID, accountID, "mastodon", time.Now().UTC())

	t.Run("AddTarget_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		mockUseCase.On("AddTarget", mock.Anything, post.ID, accountID).Return(target, nil).Once()

		c, w := createTestContext(http.MethodPost, "/", dto.AddTargetRequest{AccountID: accountID.String()})
		c.Params = gin.Params{{Key: "id", Value: post.ID.String()}}

		handler.AddTargetHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		response := decode[dto.TargetResponse](t, w)
		assert.Equal(t, "mastodon", response.Platform)
		assert.Equal(t, "pending", response.Status)
	})

	t.Run("AddTarget_Duplicate", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		mockUseCase.On("AddTarget", mock.Anything, post.ID, accountID).
			Return(nil, publishingDomain.ErrDuplicateTarget).
			Once()

		c, w := createTestContext(http.MethodPost, "/", dto.AddTargetRequest{AccountID: accountID.String()})
		c.Params = gin.Params{{Key: "id", Value: post.ID.String()}}

		handler.AddTargetHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("ListTargets_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		mockUseCase.On("ListTargets", mock.Anything, post.ID).
			Return([]*publishingDomain.PostTarget{target}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: post.ID.String()}}

		handler.ListTargetsHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[dto.ListTargetsResponse](t, w)
		require.Len(t, response.Data, 1)
		assert.Equal(t, target.ID.String(), response.Data[0].ID)
	})

	t.Run("RemoveTarget_InvalidTargetID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodDelete, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: post.ID.String()}, {Key: "target_id", Value: "x"}}

		handler.RemoveTargetHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode[map[string]any](t, w)["message"], "target_id")
	})

	t.Run("RemoveTarget_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		mockUseCase.On("RemoveTarget", mock.Anything, post.ID, target.ID).Return(nil).Once()

		c, w := createTestContext(http.MethodDelete, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: post.ID.String()}, {Key: "target_id", Value: target.ID.String()}}

		handler.RemoveTargetHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("UpdateTargetStatus_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		failed := *target
		code, message := "RATE_LIMIT", "slow down"
		failed.Status = publishingDomain.TargetStatusFailed
		failed.ErrorCode = &code
		failed.ErrorMessage = &message
		mockUseCase.On(
			"UpdateTargetStatus",
			mock.Anything,
			target.ID,
			publishingDomain.TargetStatusFailed,
			publishingDomain.TargetAttributes{ErrorCode: code, ErrorMessage: message},
		).Return(&failed, nil).Once()

		c, w := createTestContext(http.MethodPut, "/", dto.UpdateTargetStatusRequest{
			Status:       "failed",
			ErrorCode:    code,
			ErrorMessage: message,
		})
		c.Params = gin.Params{{Key: "id", Value: target.ID.String()}}

		handler.UpdateTargetStatusHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[dto.TargetResponse](t, w)
		assert.Equal(t, "failed", response.Status)
		assert.Equal(t, code, *response.ErrorCode)
	})

	t.Run("UpdateTargetStatus_InvalidTransition", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		mockUseCase.On("UpdateTargetStatus", mock.Anything, target.ID, publishingDomain.TargetStatusPublished,
			publishingDomain.TargetAttributes{}).
			Return(nil, publishingDomain.ErrInvalidTargetTransition).
			Once()

		c, w := createTestContext(http.MethodPut, "/", dto.UpdateTargetStatusRequest{Status: "published"})
		c.Params = gin.Params{{Key: "id", Value: target.ID.String()}}

		handler.UpdateTargetStatusHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
