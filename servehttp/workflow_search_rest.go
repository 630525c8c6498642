package servehttp

import (
	"assetflow/domain"
	"assetflow/indices/search"
	"assetflow/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathWorkflowDocuments = "/v1/workflow-documents"

func RegisterWorkflowSearchHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWorkflowDocuments, middleWares...)
	g.GET("", handleSearchWorkflows)
}

func handleSearchWorkflows(c *gin.Context) {
	query := domain.WorkflowQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	docs, err := search.SearchWorkflowsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, docs)
}
