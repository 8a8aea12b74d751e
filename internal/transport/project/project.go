package project

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainproject "github.com/alanyang/product-catalog/internal/domain/project"
	projectsvc "github.com/alanyang/product-catalog/internal/service/project"
)

func Register(rg *gin.RouterGroup, svc *projectsvc.Service) {
	rg.GET("", listProjects(svc))
	rg.POST("/create", createProject(svc))
}

type createProjectReq struct {
	PeriodMonth        string `json:"periodMonth" binding:"required"`
	VelocityPt         *int   `json:"velocityPt" binding:"required"`
	ProjectName        string `json:"projectName" binding:"required"`
	ProjectDescription string `json:"projectDescription" binding:"required"`
}

func createProject(svc *projectsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProjectReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		period, err := domainproject.ParsePeriodMonth(req.PeriodMonth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := svc.Create(c.Request.Context(), domainproject.NewProject{
			PeriodMonth:        period,
			VelocityPt:         *req.VelocityPt,
			ProjectName:        req.ProjectName,
			ProjectDescription: req.ProjectDescription,
		})
		if err != nil {
			if errors.Is(err, domainproject.ErrInvalidProject) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			slog.ErrorContext(c.Request.Context(), "create project failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func listProjects(svc *projectsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := svc.List(c.Request.Context())
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "list projects failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}
