package collections

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	assert.Equal(t, "/preview/api/collections/students", MountPath("/preview", "students"))
	assert.Equal(t, "/preview/api/collections/students", MountPath("preview/", "/students"))
	assert.Equal(t, "/api/data/quizzes", MountPath("", "quizzes", WithRoutePath("api/data/")))
}

func TestRegisterRoutes_RegistersSubtree(t *testing.T) {
	mux := http.NewServeMux()
	component := New(WithCollection("rows", numbered(4)))
	pattern, err := component.RegisterRoutes(mux, "/preview")
	require.NoError(t, err)
	assert.Equal(t, "/preview/api/collections/", pattern)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/api/collections/rows?pageSize=2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = RegisterRoutes(nil, "/")
	assert.Error(t, err)
}
