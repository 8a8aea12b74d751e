package transport_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/product-catalog/internal/adapter/memory"
	"github.com/alanyang/product-catalog/internal/mocks"
	"github.com/alanyang/product-catalog/internal/transport"
)

func init() { gin.SetMode(gin.TestMode) }

// countingRouter returns a router whose POST /items handler reports how many
// times it ran, replying with the given status.
func countingRouter(status int) (*gin.Engine, *int) {
	calls := 0
	r := gin.New()
	r.Use(transport.IdempotencyMiddleware(memory.NewCache(), time.Minute))
	r.POST("/items", func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	})
	r.PUT("/items", func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	})
	return r, &calls
}

func do(r http.Handler, method, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/items", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(transport.IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysFirstResponse(t *testing.T) {
	r, calls := countingRouter(http.StatusCreated)

	first := do(r, http.MethodPost, "abc")
	second := do(r, http.MethodPost, "abc")

	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(transport.IdempotencyReplayedHeader))
	assert.Contains(t, second.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, 1, *calls)
}

func TestIdempotency_KeyScopedByMethod(t *testing.T) {
	r, calls := countingRouter(http.StatusOK)

	do(r, http.MethodPost, "abc")
	w := do(r, http.MethodPut, "abc")

	assert.Empty(t, w.Header().Get(transport.IdempotencyReplayedHeader))
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_NoKeyRunsEveryTime(t *testing.T) {
	r, calls := countingRouter(http.StatusCreated)

	do(r, http.MethodPost, "")
	do(r, http.MethodPost, "")

	assert.Equal(t, 2, *calls)
}

func TestIdempotency_ServerErrorsNotRecorded(t *testing.T) {
	r, calls := countingRouter(http.StatusInternalServerError)

	do(r, http.MethodPost, "abc")
	w := do(r, http.MethodPost, "abc")

	assert.Empty(t, w.Header().Get(transport.IdempotencyReplayedHeader))
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_ClientErrorsReplayed(t *testing.T) {
	r, calls := countingRouter(http.StatusConflict)

	do(r, http.MethodPost, "abc")
	w := do(r, http.MethodPost, "abc")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "true", w.Header().Get(transport.IdempotencyReplayedHeader))
	assert.Equal(t, 1, *calls)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(transport.CORSMiddleware())
	r.POST("/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/items", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), transport.IdempotencyKeyHeader)
}

func TestIdempotency_StoreFailuresDoNotBlockRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)
	store.EXPECT().Lookup(gomock.Any(), "POST /items abc").Return(nil, false, errors.New("db down"))
	store.EXPECT().Save(gomock.Any(), "POST /items abc", gomock.Any(), time.Minute).Return(errors.New("db down"))

	r := gin.New()
	r.Use(transport.IdempotencyMiddleware(store, time.Minute))
	r.POST("/items", func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"ok": true}) })

	w := do(r, http.MethodPost, "abc")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestIdempotency_GetIgnoresKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	r := gin.New()
	r.Use(transport.IdempotencyMiddleware(store, time.Minute))
	r.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "abc")
	assert.Equal(t, http.StatusOK, w.Code)
}
