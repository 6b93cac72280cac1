package controller

import (
	"net/http"
	"testing"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	code, resp := ts.request(t, http.MethodPost, "/api/compositions", map[string]interface{}{"title": "Physics"})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var comp model.Composition
	decode(t, resp, &comp)
	assert.Equal(t, uint(1), comp.OwnerID)

	code, resp = ts.request(t, http.MethodPost, "/api/compositions/"+comp.ID+"/skilltrees", map[string]interface{}{
		"title": "Mechanics", "withExample": true,
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var tree model.Skilltree
	decode(t, resp, &tree)
	assert.Len(t, ts.db.SkillRows, 3)

	code, resp = ts.request(t, http.MethodGet, "/api/compositions/"+comp.ID, nil)
	require.Equal(t, http.StatusOK, code)
	var detail service.CompositionDetail
	decode(t, resp, &detail)
	require.Len(t, detail.Skilltrees, 1)
	assert.Equal(t, tree.ID, detail.Skilltrees[0].ID)

	code, resp = ts.request(t, http.MethodGet, "/api/compositions", nil)
	require.Equal(t, http.StatusOK, code)
	var list []model.Composition
	decode(t, resp, &list)
	assert.Len(t, list, 1)

	code, _ = ts.request(t, http.MethodDelete, "/api/compositions/"+comp.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, ts.db.SkillRows)
	assert.Empty(t, ts.db.SkilltreeRows)

	code, _ = ts.request(t, http.MethodGet, "/api/compositions/"+comp.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateCompositionValidation(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.request(t, http.MethodPost, "/api/compositions", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.request(t, http.MethodPost, "/api/compositions/missing/skilltrees", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMoveAndDeleteSkilltree(t *testing.T) {
	ts := newTestServer(t)
	ts.db.SampleTree()
	ts.db.PutSkilltree("c1", "t2", 1)
	ts.db.PutSkilltree("c1", "t3", 2)

	code, _ := ts.request(t, http.MethodPost, "/api/skilltrees/t3/move", map[string]string{"direction": "up"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, ts.db.SkilltreeRows["t3"].Order)
	assert.Equal(t, 2, ts.db.SkilltreeRows["t2"].Order)

	code, _ = ts.request(t, http.MethodDelete, "/api/skilltrees/t1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, ts.db.SkilltreeRows["t3"].Order)
	assert.Equal(t, 1, ts.db.SkilltreeRows["t2"].Order)
	assert.Empty(t, ts.db.SkillRows)
}

func TestRepairOrderEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.db.PutComposition("c1")
	tree := ts.db.PutSkilltree("c1", "t1", 0)
	ts.db.PutSkill(tree, "a", 3)
	ts.db.PutSkill(tree, "b", 8)

	code, resp := ts.request(t, http.MethodPost, "/api/admin/repair-order?path="+q(tree), nil)
	require.Equal(t, http.StatusOK, code)
	var out map[string]int
	decode(t, resp, &out)
	assert.Equal(t, 2, out["changed"])
	assert.Equal(t, 0, ts.db.SkillRows[tree+"/skills/a"].Order)
}
