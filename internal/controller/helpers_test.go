package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"skilltree_backend/internal/config"
	"skilltree_backend/internal/model"
	"skilltree_backend/internal/service"
	"skilltree_backend/internal/service/servicetest"
	"skilltree_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	db     *servicetest.DB
	router *gin.Engine
	role   model.UserRole
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, util.RegisterValidators())

	db := servicetest.NewDB()
	orders := service.NewOrderManager(db)
	deleter := service.NewDeletionService(db)
	skills := service.NewSkillService(servicetest.Skills{DB: db}, servicetest.Skilltrees{DB: db}, orders, deleter, config.SkilltreeConfig{})
	comps := service.NewCompositionService(servicetest.Compositions{DB: db}, servicetest.Skilltrees{DB: db}, skills, orders, deleter, nil)
	progress := service.NewProgressService(servicetest.Completions{DB: db}, servicetest.Skills{DB: db}, nil)
	evals := service.NewEvaluationService(servicetest.Evaluations{DB: db}, servicetest.Compositions{DB: db}, servicetest.Skilltrees{DB: db}, skills)
	storage := &service.StorageService{Provider: &service.LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}}}

	ts := &testServer{db: db, role: model.Teacher}
	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(util.ContextUserKey, &util.Claims{UserID: 1, Role: ts.role})
		c.Next()
	})

	cc := NewCompositionController(comps)
	api.GET("/compositions", cc.ListCompositions)
	api.POST("/compositions", cc.CreateComposition)
	api.GET("/compositions/:id", cc.GetComposition)
	api.DELETE("/compositions/:id", cc.DeleteComposition)
	api.POST("/compositions/:id/skilltrees", cc.CreateSkilltree)
	api.POST("/skilltrees/:id/move", cc.MoveSkilltree)
	api.DELETE("/skilltrees/:id", cc.DeleteSkilltree)

	sc := NewSkillController(skills, storage)
	api.GET("/skilltrees/:id/tree", sc.GetTree)
	api.GET("/skills", sc.GetSkill)
	api.POST("/skills", sc.CreateSkill)
	api.POST("/skills/sibling", sc.CreateSibling)
	api.PUT("/skills", sc.UpdateSkill)
	api.POST("/skills/move", sc.MoveSkill)
	api.DELETE("/skills", sc.DeleteSkill)
	api.GET("/skills/flatten", sc.FlattenSkill)
	api.POST("/skills/icon", sc.UploadIcon)

	pc := NewProgressController(progress)
	api.PUT("/progress", pc.SetStatus)
	api.GET("/compositions/:id/completion", pc.GetCompletion)
	api.GET("/compositions/:id/completion/stream", pc.StreamCompletion)
	api.GET("/compositions/:id/progress", pc.GetSummary)

	ec := NewEvaluationController(evals)
	api.POST("/evaluations", ec.RecordEvaluation)
	api.GET("/compositions/:id/grades", ec.GetGrades)

	ac := NewAdminController(orders)
	api.POST("/admin/repair-order", ac.RepairOrder)

	ts.router = r
	return ts
}

// apiResponse 与 util.Response 结构一致，Data 延迟解码
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (ts *testServer) request(t *testing.T, method, url string, body interface{}) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	return ts.serve(t, req)
}

func (ts *testServer) serve(t *testing.T, req *http.Request) (int, apiResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func decode(t *testing.T, resp apiResponse, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, out))
}
