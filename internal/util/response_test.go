package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"skilltree_backend/internal/skilltree"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: skills/x", skilltree.ErrNotFound), http.StatusNotFound},
		{skilltree.ErrOrderConflict, http.StatusConflict},
		{fmt.Errorf("%w: no skilltree", skilltree.ErrMissingStructuralContext), http.StatusBadRequest},
		{skilltree.ErrIncompleteInput, http.StatusBadRequest},
		{skilltree.ErrDepthLimitExceeded, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrPermissionDenied, http.StatusForbidden},
		{fmt.Errorf("%w: boom", skilltree.ErrStoreOperationFailed), http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}

func TestHandleErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleError(c, fmt.Errorf("%w: dial tcp 10.0.0.1", skilltree.ErrStoreOperationFailed))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	HandleError(c, fmt.Errorf("%w: compositions/c1", skilltree.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "compositions/c1")
}
