package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/services"
	"github.com/yigit/studyhub/internal/middleware"
)

// SubjectController serves the subject catalog
type SubjectController struct {
	subjectService services.SubjectService
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(subjectService services.SubjectService) *SubjectController {
	return &SubjectController{subjectService: subjectService}
}

// ListSubjects returns every subject
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectResponse}
// @Router /subjects [get]
func (c *SubjectController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.subjectService.ListSubjects(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subjects))
}
