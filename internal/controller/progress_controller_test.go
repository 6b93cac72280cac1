package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/service"
	"skilltree_backend/internal/service/servicetest"
	"skilltree_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.db.SampleTree()

	code, resp := ts.request(t, http.MethodPut, "/api/progress", map[string]string{
		"path": tree1 + "/skills/root", "status": "selected",
	})
	require.Equal(t, http.StatusOK, code, resp.Message)

	code, _ = ts.request(t, http.MethodPut, "/api/progress", map[string]string{
		"path": tree1 + "/skills/root", "status": "finished",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = ts.request(t, http.MethodGet, "/api/compositions/c1/completion", nil)
	require.Equal(t, http.StatusOK, code)
	var maps map[string]map[string]model.SkillStatus
	decode(t, resp, &maps)
	assert.Equal(t, model.SkillSelected, maps["t1"]["root"])

	code, resp = ts.request(t, http.MethodGet, "/api/compositions/c1/progress", nil)
	require.Equal(t, http.StatusOK, code)
	var summary service.ProgressSummary
	decode(t, resp, &summary)
	assert.Equal(t, 1, summary.Selected)
	assert.Equal(t, 4, summary.Total)
}

// streamRecorder 为 gin 的 Stream 提供 CloseNotify
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *streamRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func TestStreamCompletionPushesOwnChangesAndUnsubscribesOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := servicetest.NewDB()
	db.SampleTree()
	cache := servicetest.NewCache()
	progress := service.NewProgressService(servicetest.Completions{DB: db}, servicetest.Skills{DB: db}, cache)

	r := gin.New()
	r.GET("/api/compositions/:id/completion/stream", func(c *gin.Context) {
		c.Set(util.ContextUserKey, &util.Claims{UserID: 7, Role: model.Student})
		c.Next()
	}, NewProgressController(progress).StreamCompletion)

	reqCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/compositions/c1/completion/stream", nil).WithContext(reqCtx)
	w := &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}

	finished := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(finished)
	}()
	require.Eventually(t, func() bool { return cache.Subscribers("c1") == 1 }, time.Second, 5*time.Millisecond)

	ctx := context.Background()
	_, err := progress.SetStatus(ctx, 7, service.SetStatusRequest{Path: tree1 + "/skills/root", Status: model.SkillSelected})
	require.NoError(t, err)
	// 其他学生的变更不推送
	_, err = progress.SetStatus(ctx, 8, service.SetStatusRequest{Path: tree1 + "/skills/root/skills/child2", Status: model.SkillUnlocked})
	require.NoError(t, err)

	cancel()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after the client went away")
	}

	body := w.Body.String()
	assert.Contains(t, body, "event:completion")
	assert.Contains(t, body, `"skillId":"root"`)
	assert.NotContains(t, body, `"skillId":"child2"`)
	assert.Equal(t, 0, cache.Subscribers("c1"))
	assert.Equal(t, 1, cache.UnsubscribeCount())
}

func TestStreamCompletionWithoutCache(t *testing.T) {
	ts := newTestServer(t)
	ts.db.SampleTree()

	code, _ := ts.request(t, http.MethodGet, "/api/compositions/c1/completion/stream", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
