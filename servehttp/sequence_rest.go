package servehttp

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/domain/sequence"
	"assetflow/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var PathSequenceTemplates = "/v1/sequence-templates"

func RegisterSequenceTemplateHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &sequenceTemplateHandler{validator: validator.New()}

	g := r.Group(PathSequenceTemplates, middleWares...)
	g.GET("", handler.handleGetTemplate)
	g.POST("", handler.handleCreateTemplate)
	g.POST("clones", handler.handleCloneTemplate)
}

type sequenceTemplateHandler struct {
	validator *validator.Validate
}

func (h *sequenceTemplateHandler) handleGetTemplate(c *gin.Context) {
	categoryKey := c.Query("categoryKey")
	if categoryKey == "" {
		panic(&bizerror.ErrBadParam{})
	}
	orgId, err := types.ParseID(c.Query("orgId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	steps, err := sequence.GetTemplateFunc(categoryKey, orgId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, steps)
}

func (h *sequenceTemplateHandler) handleCreateTemplate(c *gin.Context) {
	creation := domain.SequenceTemplateCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	steps, err := sequence.CreateTemplateFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, steps)
}

func (h *sequenceTemplateHandler) handleCloneTemplate(c *gin.Context) {
	cloning := domain.SequenceTemplateCloning{}
	if err := c.ShouldBindBodyWith(&cloning, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(cloning); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	count, err := sequence.CloneTemplateFunc(&cloning, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"insertedSteps": count})
}
