package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/convoy-settlement-engine/internal/domain/actor"
	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/domain/outbox"
)

type MockActorService struct {
	mock.Mock
}

func (m *MockActorService) GetActorByID(ctx context.Context, id uuid.UUID) (*actor.Actor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actor.Actor), args.Error(1)
}

func (m *MockActorService) GetActorAccounts(ctx context.Context, actorID uuid.UUID) ([]ledger.Account, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Account), args.Error(1)
}

func (m *MockActorService) GetActorHistory(ctx context.Context, actorID uuid.UUID, page, perPage int) ([]*outbox.ArchiveRecord, error) {
	args := m.Called(ctx, actorID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.ArchiveRecord), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

func TestActorHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockActorService)
		handler := NewActorHandler(logger, mockService)

		actorID := uuid.New()
		now := time.Now()
		expectedActor := &actor.Actor{
			ID:           actorID,
			CharacterID:  "steam:1100001abc",
			PlayerID:     42,
			Name:         "Jane Hauler",
			RoleplayMode: true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		mockService.On("GetActorByID", mock.Anything, actorID).Return(expectedActor, nil)

		router := setupTestRouter()
		router.GET("/actors/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/actors/"+actorID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		require.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		dataBytes, err := json.Marshal(topLevelResponse.Data)
		require.NoError(t, err)
		var responseBody ActorResponse
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, expectedActor.ID.String(), responseBody.ID)
		assert.Equal(t, expectedActor.CharacterID, responseBody.CharacterID)
		assert.Equal(t, expectedActor.PlayerID, responseBody.PlayerID)
		assert.True(t, responseBody.RoleplayMode)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockActorService)
		handler := NewActorHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/actors/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/actors/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockActorService)
		handler := NewActorHandler(logger, mockService)

		actorID := uuid.New()
		mockService.On("GetActorByID", mock.Anything, actorID).Return(nil, actor.ErrActorNotFound)

		router := setupTestRouter()
		router.GET("/actors/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/actors/"+actorID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockActorService)
		handler := NewActorHandler(logger, mockService)

		actorID := uuid.New()
		mockService.On("GetActorByID", mock.Anything, actorID).Return(nil, errors.New("connection refused"))

		router := setupTestRouter()
		router.GET("/actors/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/actors/"+actorID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestActorHandler_GetAccounts(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockActorService)
		handler := NewActorHandler(logger, mockService)

		actorID := uuid.New()
		now := time.Now()
		accounts := []ledger.Account{
			{
				ID:        uuid.New(),
				Type:      ledger.AccountTypeLiability,
				Book:      ledger.BookBank,
				OwnerID:   &actorID,
				Name:      ledger.AccountActorCash,
				Balance:   125000,
				CreatedAt: now,
				UpdatedAt: now,
			},
			{
				ID:        uuid.New(),
				Type:      ledger.AccountTypeLiability,
				Book:      ledger.BookBank,
				OwnerID:   &actorID,
				Name:      ledger.AccountActorSavings,
				Balance:   4300,
				CreatedAt: now,
				UpdatedAt: now,
			},
		}
		mockService.On("GetActorAccounts", mock.Anything, actorID).Return(accounts, nil)

		router := setupTestRouter()
		router.GET("/actors/:id/accounts", handler.GetAccounts)

		req, _ := http.NewRequest(http.MethodGet, "/actors/"+actorID.String()+"/accounts", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))

		dataBytes, err := json.Marshal(topLevelResponse.Data)
		require.NoError(t, err)
		var responseBody []AccountResponse
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		require.Len(t, responseBody, 2)
		assert.Equal(t, ledger.AccountActorCash, responseBody[0].Name)
		assert.Equal(t, int64(125000), responseBody[0].Balance)
		assert.Equal(t, actorID.String(), responseBody[0].OwnerID)

		mockService.AssertExpectations(t)
	})

	t.Run("ActorNotFound", func(t *testing.T) {
		mockService := new(MockActorService)
		handler := NewActorHandler(logger, mockService)

		actorID := uuid.New()
		mockService.On("GetActorAccounts", mock.Anything, actorID).Return(nil, actor.ErrActorNotFound)

		router := setupTestRouter()
		router.GET("/actors/:id/accounts", handler.GetAccounts)

		req, _ := http.NewRequest(http.MethodGet, "/actors/"+actorID.String()+"/accounts", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestActorHandler_GetHistory(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockActorService)
		handler := NewActorHandler(logger, mockService)

		actorID := uuid.New()
		records := []*outbox.ArchiveRecord{
			{Journal: ledger.JournalEntry{ID: uuid.New(), Description: "Delivery subsidy", ActorID: &actorID}},
		}
		mockService.On("GetActorHistory", mock.Anything, actorID, 2, 25).Return(records, nil)

		router := setupTestRouter()
		router.GET("/actors/:id/history", handler.GetHistory)

		req, _ := http.NewRequest(http.MethodGet, "/actors/"+actorID.String()+"/history?page=2&per_page=25", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		require.NotNil(t, topLevelResponse.Meta)
		assert.Equal(t, 2, topLevelResponse.Meta.Page)
		assert.Equal(t, 25, topLevelResponse.Meta.PerPage)

		mockService.AssertExpectations(t)
	})

	t.Run("DefaultPagination", func(t *testing.T) {
		mockService := new(MockActorService)
		handler := NewActorHandler(logger, mockService)

		actorID := uuid.New()
		mockService.On("GetActorHistory", mock.Anything, actorID, 1, 10).Return([]*outbox.ArchiveRecord{}, nil)

		router := setupTestRouter()
		router.GET("/actors/:id/history", handler.GetHistory)

		req, _ := http.NewRequest(http.MethodGet, "/actors/"+actorID.String()+"/history", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		mockService := new(MockActorService)
		handler := NewActorHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/actors/:id/history", handler.GetHistory)

		req, _ := http.NewRequest(http.MethodGet, "/actors/"+uuid.New().String()+"/history?page=0", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}
