package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"tidemark/internal/app/server/api/http/middleware/auth"
	"tidemark/internal/domain/entity"
	"tidemark/internal/domain/sync"
	"tidemark/internal/utils/humautil"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Pull(ctx context.Context, userID, since string) (entity.Delta, error) {
	args := m.Called(ctx, userID, since)
	return args.Get(0).(entity.Delta), args.Error(1)
}

func newTestAPI(t *testing.T, svc sync.Servicer) humatest.TestAPI {
	_, api := humatest.New(t, humautil.Config("test", "1.0.0"))
	asUser := func(ctx huma.Context, next func(huma.Context)) {
		next(huma.WithContext(ctx, auth.WithUserID(ctx.Context(), "u1")))
	}
	NewHandler(svc, slog.Default(), huma.Middlewares{asUser}).SetupRoutes(api)
	return api
}

func TestHandler_Pull(t *testing.T) {
	syncedAt := entity.NewTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	svc := new(MockService)
	svc.On("Pull", mock.Anything, "u1", "2024-05-01T00:00:00.000Z").Return(entity.Delta{
		Records: []entity.Record{},
		Folders: []entity.Folder{{
			Base: entity.Base{ID: "f1", UpdatedAt: syncedAt, Deleted: 1},
			Name: "old",
		}},
		ChannelBookmarks: []entity.ChannelBookmark{},
		SyncedAt:         syncedAt,
	}, nil)
	api := newTestAPI(t, svc)

	resp := api.Get("/sync?since=2024-05-01T00:00:00.000Z")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Records  []json.RawMessage `json:"records"`
		Folders  []map[string]any  `json:"folders"`
		SyncedAt string            `json:"synced_at"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotNil(t, body.Records)
	require.Len(t, body.Folders, 1)
	assert.Equal(t, float64(1), body.Folders[0]["deleted"])
	assert.Equal(t, "2024-05-01T12:00:00.000Z", body.SyncedAt)
	svc.AssertExpectations(t)
}

func TestHandler_Pull_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "bad cursor", err: fmt.Errorf("%w: %q", sync.ErrInvalidCursor, "x"), wantStatus: http.StatusBadRequest},
		{name: "storage", err: errors.New("pool closed"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Pull", mock.Anything, "u1", "").Return(entity.Delta{}, tt.err)

			resp := newTestAPI(t, svc).Get("/sync")

			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), `"error"`)
		})
	}
}
