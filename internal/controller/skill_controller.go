package controller

import (
	"net/http"

	"skilltree_backend/internal/service"
	"skilltree_backend/internal/skilltree"
	"skilltree_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SkillController struct {
	SkillService   *service.SkillService
	StorageService *service.StorageService
}

func NewSkillController(skillService *service.SkillService, storageService *service.StorageService) *SkillController {
	return &SkillController{
		SkillService:   skillService,
		StorageService: storageService,
	}
}

// GetTree godoc
// @Summary 技能树视图
// @Description mode=viewing（默认）返回带展示信息的树，mode=editing 返回全部展开的编辑树
// @Tags 技能
// @Produce json
// @Param id path string true "技能树ID"
// @Param mode query string false "viewing 或 editing"
// @Success 200 {object} util.Response{data=service.TreeResponse}
// @Router /api/skilltrees/{id}/tree [get]
func (c *SkillController) GetTree(ctx *gin.Context) {
	mode := parseMode(ctx.Query("mode"))
	if mode == skilltree.ModeEditing && util.GetUserFromContext(ctx) == nil {
		util.Unauthorized(ctx)
		return
	}
	tree, err := c.SkillService.GetTree(ctx.Request.Context(), ctx.Param("id"), mode)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, tree)
}

// GetSkill godoc
// @Summary 技能详情
// @Tags 技能
// @Produce json
// @Security ApiKeyAuth
// @Param path query string true "技能路径"
// @Success 200 {object} util.Response{data=model.Skill}
// @Router /api/skills [get]
func (c *SkillController) GetSkill(ctx *gin.Context) {
	path, ok := requirePath(ctx)
	if !ok {
		return
	}
	skill, err := c.SkillService.GetSkill(ctx.Request.Context(), path)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, skill)
}

// CreateSkill godoc
// @Summary 新建技能
// @Description parentPath 为技能树路径时新建根技能，为技能路径时新建子技能
// @Tags 技能
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateSkillRequest true "技能信息"
// @Success 201 {object} util.Response{data=model.Skill}
// @Router /api/skills [post]
func (c *SkillController) CreateSkill(ctx *gin.Context) {
	var req service.CreateSkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	skill, err := c.SkillService.CreateSkill(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, skill)
}

// CreateSibling godoc
// @Summary 新建兄弟技能
// @Tags 技能
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param path query string true "兄弟技能路径"
// @Param body body service.SkillRequest true "技能信息"
// @Success 201 {object} util.Response{data=model.Skill}
// @Router /api/skills/sibling [post]
func (c *SkillController) CreateSibling(ctx *gin.Context) {
	path, ok := requirePath(ctx)
	if !ok {
		return
	}
	var req service.SkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	skill, err := c.SkillService.CreateSibling(ctx.Request.Context(), path, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, skill)
}

// UpdateSkill godoc
// @Summary 更新技能
// @Tags 技能
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param path query string true "技能路径"
// @Param body body service.SkillRequest true "技能信息"
// @Success 200 {object} util.Response{data=model.Skill}
// @Router /api/skills [put]
func (c *SkillController) UpdateSkill(ctx *gin.Context) {
	path, ok := requirePath(ctx)
	if !ok {
		return
	}
	var req service.SkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	skill, err := c.SkillService.UpdateSkill(ctx.Request.Context(), path, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, skill)
}

// MoveSkill godoc
// @Summary 移动技能
// @Description 与相邻兄弟交换位置，已在边界时不做修改
// @Tags 技能
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body MoveRequest true "技能路径与方向"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "并发修改冲突"
// @Router /api/skills/move [post]
func (c *SkillController) MoveSkill(ctx *gin.Context) {
	var req MoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Path == "" {
		util.BadRequest(ctx, "path is required")
		return
	}
	dir, err := parseDirection(req.Direction)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.SkillService.MoveSkill(ctx.Request.Context(), req.Path, dir); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// DeleteSkill godoc
// @Summary 删除技能
// @Description 级联删除技能及全部子技能
// @Tags 技能
// @Produce json
// @Security ApiKeyAuth
// @Param path query string true "技能路径"
// @Success 200 {object} util.Response
// @Router /api/skills [delete]
func (c *SkillController) DeleteSkill(ctx *gin.Context) {
	path, ok := requirePath(ctx)
	if !ok {
		return
	}
	if err := c.SkillService.DeleteSkill(ctx.Request.Context(), path); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// FlattenSkill godoc
// @Summary 展开子树
// @Description 按先序返回子树中的技能及其祖先链
// @Tags 技能
// @Produce json
// @Security ApiKeyAuth
// @Param path query string true "技能或技能树路径"
// @Success 200 {object} util.Response{data=[]skilltree.FlatSkill}
// @Router /api/skills/flatten [get]
func (c *SkillController) FlattenSkill(ctx *gin.Context) {
	path, ok := requirePath(ctx)
	if !ok {
		return
	}
	flat, err := c.SkillService.FlattenSubtree(ctx.Request.Context(), path)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, flat)
}

// UploadIcon godoc
// @Summary 上传链接图标
// @Tags 技能
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param path formData string true "技能路径"
// @Param file formData file true "图标文件"
// @Success 201 {object} util.Response{data=object}
// @Router /api/skills/icon [post]
func (c *SkillController) UploadIcon(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, util.MaxIconSize+1<<20)
	path := ctx.PostForm("path")
	if path == "" {
		util.BadRequest(ctx, "path is required")
		return
	}
	skill, err := c.SkillService.GetSkill(ctx.Request.Context(), path)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	url, err := c.StorageService.UploadIcon(ctx.Request.Context(), skill.ID, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"iconRef": url})
}
