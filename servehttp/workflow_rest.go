package servehttp

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/domain/approval"
	"assetflow/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	PathWorkflows       = "/v1/asset-workflows"
	PathWorkflowDetails = "/v1/asset-workflow-details"
)

func RegisterWorkflowHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &workflowHandler{validator: validator.New()}

	g := r.Group(PathWorkflows, middleWares...)
	g.POST("", handler.handleInstantiateWorkflow)
	g.GET("", handler.handleQueryWorkflows)
	g.GET(":headerId", handler.handleDetailWorkflow)

	d := r.Group(PathWorkflowDetails, middleWares...)
	d.POST(":detailId/actions", handler.handleActOnDetail)
}

type workflowHandler struct {
	validator *validator.Validate
}

func (h *workflowHandler) handleInstantiateWorkflow(c *gin.Context) {
	creation := approval.WorkflowInstantiation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	snapshot, err := approval.InstantiateFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, snapshot)
}

func (h *workflowHandler) handleQueryWorkflows(c *gin.Context) {
	query := domain.WorkflowQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	headers, err := approval.QueryWorkflowsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, headers)
}

func (h *workflowHandler) handleDetailWorkflow(c *gin.Context) {
	headerId, err := types.ParseID(c.Param("headerId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	orgId, err := types.ParseID(c.Query("orgId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	snapshot, err := approval.DetailWorkflowFunc(headerId, orgId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *workflowHandler) handleActOnDetail(c *gin.Context) {
	detailId, err := types.ParseID(c.Param("detailId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	action := approval.WorkflowAction{}
	if err := c.ShouldBindBodyWith(&action, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(action); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	result, err := approval.ActFunc(detailId, &action, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
