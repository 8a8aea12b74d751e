package project_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainproject "github.com/alanyang/product-catalog/internal/domain/project"
	"github.com/alanyang/product-catalog/internal/mocks"
	projectsvc "github.com/alanyang/product-catalog/internal/service/project"
	transportproject "github.com/alanyang/product-catalog/internal/transport/project"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(svc *projectsvc.Service) *gin.Engine {
	r := gin.New()
	transportproject.Register(r.Group("/project"), svc)
	return r
}

func newProjectSvc(t *testing.T) (*projectsvc.Service, *mocks.MockProjectRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProjectRepository(ctrl)
	return projectsvc.NewService(repo), repo
}

func post(r *gin.Engine, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "/project/create", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func validBody() map[string]any {
	return map[string]any{
		"periodMonth":        "2024-03",
		"velocityPt":         21,
		"projectName":        "catalog",
		"projectDescription": "rebuild",
	}
}

// ── POST /create (createProject) ─────────────────────────────────────────────

func TestCreateProject_Success(t *testing.T) {
	svc, repo := newProjectSvc(t)
	r := newRouter(svc)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, np domainproject.NewProject) (domainproject.Project, error) {
			assert.Equal(t, 2024, np.PeriodMonth.Year())
			assert.Equal(t, 21, np.VelocityPt)
			return domainproject.Project{ID: 1, ProjectName: np.ProjectName, VelocityPt: np.VelocityPt, PeriodMonth: np.PeriodMonth}, nil
		})

	w := post(r, validBody())
	assert.Equal(t, http.StatusCreated, w.Code)
	var got domainproject.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "catalog", got.ProjectName)
}

func TestCreateProject_BadBody(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{name: "missing fields", mutate: func(m map[string]any) { clear(m) }},
		{name: "missing velocity", mutate: func(m map[string]any) { delete(m, "velocityPt") }},
		{name: "bad period", mutate: func(m map[string]any) { m["periodMonth"] = "soon" }},
		{name: "blank name", mutate: func(m map[string]any) { m["projectName"] = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newProjectSvc(t)
			body := validBody()
			tt.mutate(body)
			w := post(newRouter(svc), body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateProject_ServiceError(t *testing.T) {
	svc, repo := newProjectSvc(t)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domainproject.Project{}, errors.New("db error"))

	w := post(newRouter(svc), validBody())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ── GET / (listProjects) ─────────────────────────────────────────────────────

func TestListProjects(t *testing.T) {
	svc, repo := newProjectSvc(t)
	repo.EXPECT().List(gomock.Any()).Return([]domainproject.Project{{ID: 2}, {ID: 1}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/project", nil)
	newRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []domainproject.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestListProjects_Error(t *testing.T) {
	svc, repo := newProjectSvc(t)
	repo.EXPECT().List(gomock.Any()).Return(nil, errors.New("db error"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/project", nil)
	newRouter(svc).ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
