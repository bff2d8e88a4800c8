package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/request-gin/internal/auth"
	"github.com/mautops/request-gin/internal/service"
	"github.com/mautops/request-gin/internal/types"
	"github.com/mautops/request-gin/internal/utils"
	"github.com/mautops/request-gin/internal/workflow"
	"github.com/sirupsen/logrus"
)

// CreateRequestBody 创建请求参数
// 必填字段由工作流统一校验,一次性返回全部缺失字段
type CreateRequestBody struct {
	Title                  string  `json:"title" binding:"max=255" example:"New VPN tunnel"`
	RequestedService       string  `json:"requestedService" binding:"max=128" example:"NETWORK"`
	ServiceDescription     string  `json:"serviceDescription"`
	BusinessJustification  string  `json:"businessJustification"`
	RequiredStartDate      string  `json:"requiredStartDate" binding:"omitempty,requestdate" example:"2025-03-01"`
	RequiredCompletionDate string  `json:"requiredCompletionDate" binding:"omitempty,requestdate" example:"2025-03-15"`
	FileURL                *string `json:"fileUrl"`
	Priority               string  `json:"priority" binding:"omitempty,level" example:"MEDIUM"`
	ImpactCategory         string  `json:"impactCategory" binding:"omitempty,level" example:"LOW"`
	RequestGroup           string  `json:"requestGroup" binding:"max=128"`
	ProviderID             string  `json:"providerId" binding:"max=64"`
	DepartmentID           string  `json:"departmentId" binding:"max=64"`
}

// UpdateRequestBody 更新请求参数,缺省字段不修改
type UpdateRequestBody struct {
	ID                     *string `json:"id,omitempty"`
	Status                 *string `json:"status,omitempty" binding:"omitempty,requeststatus" example:"PENDING_ADMIN_REVIEW"`
	Comment                *string `json:"comment,omitempty" binding:"omitempty,max=2000"`
	Title                  *string `json:"title,omitempty" binding:"omitempty,max=255"`
	RequestedService       *string `json:"requestedService,omitempty" binding:"omitempty,max=128"`
	ServiceDescription     *string `json:"serviceDescription,omitempty"`
	BusinessJustification  *string `json:"businessJustification,omitempty"`
	RequiredStartDate      *string `json:"requiredStartDate,omitempty" binding:"omitempty,requestdate"`
	RequiredCompletionDate *string `json:"requiredCompletionDate,omitempty" binding:"omitempty,requestdate"`
	FileURL                *string `json:"fileUrl,omitempty"`
	Priority               *string `json:"priority,omitempty" binding:"omitempty,level"`
	ImpactCategory         *string `json:"impactCategory,omitempty" binding:"omitempty,level"`
	RequestGroup           *string `json:"requestGroup,omitempty" binding:"omitempty,max=128"`
	ProviderID             *string `json:"providerId,omitempty" binding:"omitempty,max=64"`
	DepartmentID           *string `json:"departmentId,omitempty" binding:"omitempty,max=64"`
}

// RequestController 服务请求控制器
type RequestController struct {
	requestService service.RequestService
	logger         *logrus.Logger
}

// NewRequestController 创建服务请求控制器
func NewRequestController(requestService service.RequestService, logger *logrus.Logger) *RequestController {
	RegisterValidators()
	return &RequestController{
		requestService: requestService,
		logger:         logger,
	}
}

// List 列出请求
// @Summary      列出服务请求
// @Description  SUPERADMIN 返回全部请求,其他角色只返回自己创建的请求,按创建时间倒序
// @Tags         服务请求
// @Produce      json
// @Success      200  {object}  Response{data=[]model.RequestModel}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /requests [get]
// @Security     BearerAuth
func (rc *RequestController) List(ctx *gin.Context) {
	principal, ok := rc.principal(ctx)
	if !ok {
		return
	}

	requests, err := rc.requestService.List(ctx.Request.Context(), principal)
	if err != nil {
		respondServiceError(ctx, rc.logger, err)
		return
	}

	Success(ctx, requests)
}

// Create 创建请求
// @Summary      创建服务请求
// @Description  创建请求,初始状态为 PENDING_SUPERADMIN_REVIEW
// @Tags         服务请求
// @Accept       json
// @Produce      json
// @Param        request body CreateRequestBody true "请求信息"
// @Success      201  {object}  Response{data=model.RequestModel}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /requests [post]
// @Security     BearerAuth
func (rc *RequestController) Create(ctx *gin.Context) {
	principal, ok := rc.principal(ctx)
	if !ok {
		return
	}

	var body CreateRequestBody
	if !rc.bind(ctx, &body) {
		return
	}

	req, err := rc.requestService.Create(ctx.Request.Context(), principal, body.toInput())
	if err != nil {
		respondServiceError(ctx, rc.logger, err)
		return
	}

	Created(ctx, req)
}

// Update 按请求体中的 id 更新请求
// @Summary      更新服务请求
// @Description  修改字段和/或流转状态;状态流转追加审批轨迹
// @Tags         服务请求
// @Accept       json
// @Produce      json
// @Param        request body UpdateRequestBody true "更新内容,必须包含 id"
// @Success      200  {object}  Response{data=model.RequestModel}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /requests [patch]
// @Security     BearerAuth
func (rc *RequestController) Update(ctx *gin.Context) {
	principal, ok := rc.principal(ctx)
	if !ok {
		return
	}

	var body UpdateRequestBody
	if !rc.bind(ctx, &body) {
		return
	}
	if body.ID == nil || strings.TrimSpace(*body.ID) == "" {
		ValidationFailed(ctx, []workflow.FieldError{{Field: "id", Reason: "is required"}})
		return
	}

	rc.applyUpdate(ctx, principal, strings.TrimSpace(*body.ID), body)
}

// UpdateByID 按路径中的 id 更新请求
// @Summary      更新指定服务请求
// @Tags         服务请求
// @Accept       json
// @Produce      json
// @Param        id path string true "请求 ID"
// @Param        request body UpdateRequestBody true "更新内容"
// @Success      200  {object}  Response{data=model.RequestModel}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /requests/{id} [patch]
// @Security     BearerAuth
func (rc *RequestController) UpdateByID(ctx *gin.Context) {
	principal, ok := rc.principal(ctx)
	if !ok {
		return
	}

	var body UpdateRequestBody
	if !rc.bind(ctx, &body) {
		return
	}

	id := ctx.Param("id")
	if body.ID != nil && *body.ID != "" && *body.ID != id {
		ValidationFailed(ctx, []workflow.FieldError{{Field: "id", Reason: "does not match the path"}})
		return
	}

	rc.applyUpdate(ctx, principal, id, body)
}

func (rc *RequestController) applyUpdate(ctx *gin.Context, principal types.Principal, id string, body UpdateRequestBody) {
	if !rc.validID(ctx, id) {
		return
	}

	req, err := rc.requestService.Update(ctx.Request.Context(), principal, id, body.toPatch())
	if err != nil {
		respondServiceError(ctx, rc.logger, err)
		return
	}

	Success(ctx, req)
}

// Get 获取请求
// @Summary      获取服务请求详情
// @Tags         服务请求
// @Produce      json
// @Param        id path string true "请求 ID"
// @Success      200  {object}  Response{data=model.RequestModel}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id} [get]
// @Security     BearerAuth
func (rc *RequestController) Get(ctx *gin.Context) {
	principal, ok := rc.principal(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if !rc.validID(ctx, id) {
		return
	}

	req, err := rc.requestService.Get(ctx.Request.Context(), principal, id)
	if err != nil {
		respondServiceError(ctx, rc.logger, err)
		return
	}

	Success(ctx, req)
}

// History 获取状态历史
// @Summary      获取服务请求状态历史
// @Tags         服务请求
// @Produce      json
// @Param        id path string true "请求 ID"
// @Success      200  {object}  Response{data=[]model.StateHistoryModel}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id}/history [get]
// @Security     BearerAuth
func (rc *RequestController) History(ctx *gin.Context) {
	principal, ok := rc.principal(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if !rc.validID(ctx, id) {
		return
	}

	history, err := rc.requestService.History(ctx.Request.Context(), principal, id)
	if err != nil {
		respondServiceError(ctx, rc.logger, err)
		return
	}

	Success(ctx, history)
}

// Transitions 获取可流转状态
// @Summary      获取服务请求可流转的下一状态
// @Tags         服务请求
// @Produce      json
// @Param        id path string true "请求 ID"
// @Success      200  {object}  Response{data=service.TransitionsView}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id}/transitions [get]
// @Security     BearerAuth
func (rc *RequestController) Transitions(ctx *gin.Context) {
	principal, ok := rc.principal(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if !rc.validID(ctx, id) {
		return
	}

	view, err := rc.requestService.Transitions(ctx.Request.Context(), principal, id)
	if err != nil {
		respondServiceError(ctx, rc.logger, err)
		return
	}

	Success(ctx, view)
}

// principal 读取调用者,缺失时返回 401
func (rc *RequestController) principal(ctx *gin.Context) (types.Principal, bool) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok || principal.ID == "" {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return types.Principal{}, false
	}
	return *principal, true
}

// bind 绑定并校验请求体
func (rc *RequestController) bind(ctx *gin.Context, body interface{}) bool {
	if err := ctx.ShouldBindJSON(body); err != nil {
		if fields, ok := bindingFieldErrors(err); ok {
			ValidationFailed(ctx, fields)
			return false
		}
		_ = ctx.Error(WrapError(err, http.StatusBadRequest, "invalid request"))
		return false
	}
	return true
}

// validID 校验请求 ID 格式
func (rc *RequestController) validID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateRequestID(id); err != nil {
		ValidationFailed(ctx, []workflow.FieldError{{Field: "id", Reason: err.Error()}})
		return false
	}
	return true
}

// toInput 转换为工作流输入,格式已由绑定校验
func (b CreateRequestBody) toInput() workflow.CreateInput {
	return workflow.CreateInput{
		Title:                  strings.TrimSpace(b.Title),
		RequestedService:       strings.TrimSpace(b.RequestedService),
		ServiceDescription:     b.ServiceDescription,
		BusinessJustification:  b.BusinessJustification,
		RequiredStartDate:      optionalDate(b.RequiredStartDate),
		RequiredCompletionDate: optionalDate(b.RequiredCompletionDate),
		FileURL:                b.FileURL,
		Priority:               levelOf(b.Priority),
		ImpactCategory:         levelOf(b.ImpactCategory),
		RequestGroup:           strings.TrimSpace(b.RequestGroup),
		ProviderID:             strings.TrimSpace(b.ProviderID),
		DepartmentID:           strings.TrimSpace(b.DepartmentID),
	}
}

// toPatch 转换为工作流补丁
func (b UpdateRequestBody) toPatch() workflow.Patch {
	patch := workflow.Patch{
		Title:                 b.Title,
		RequestedService:      b.RequestedService,
		ServiceDescription:    b.ServiceDescription,
		BusinessJustification: b.BusinessJustification,
		FileURL:               b.FileURL,
		RequestGroup:          b.RequestGroup,
		ProviderID:            b.ProviderID,
		DepartmentID:          b.DepartmentID,
	}

	// 空白状态等同于未提供
	if b.Status != nil && strings.TrimSpace(*b.Status) != "" {
		status := types.RequestStatus(strings.TrimSpace(*b.Status))
		patch.Status = &status
	}
	if b.Comment != nil {
		comment := utils.StripControlChars(*b.Comment)
		patch.Comment = &comment
	}
	if b.RequiredStartDate != nil {
		d := dateOrZero(*b.RequiredStartDate)
		patch.RequiredStartDate = &d
	}
	if b.RequiredCompletionDate != nil {
		d := dateOrZero(*b.RequiredCompletionDate)
		patch.RequiredCompletionDate = &d
	}
	if b.Priority != nil {
		level := levelOf(*b.Priority)
		patch.Priority = &level
	}
	if b.ImpactCategory != nil {
		level := levelOf(*b.ImpactCategory)
		patch.ImpactCategory = &level
	}
	return patch
}

func optionalDate(s string) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d := dateOrZero(s)
	return &d
}

// dateOrZero 空串得到零值,由工作流报告为缺失
func dateOrZero(s string) time.Time {
	d, _ := parseDate(s)
	return d
}

// levelOf 非法值原样保留,由工作流报告
func levelOf(s string) types.Level {
	if level, err := types.ParseLevel(s); err == nil {
		return level
	}
	return types.Level(strings.TrimSpace(s))
}
