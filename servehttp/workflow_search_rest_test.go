package servehttp_test

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/domain/state"
	"assetflow/indices"
	"assetflow/indices/search"
	"assetflow/servehttp"
	"assetflow/session"
	"assetflow/testinfra"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestWorkflowSearchRestAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterWorkflowSearchHandler(router)

	t.Run("should pass the query through and respond with documents", func(t *testing.T) {
		searchWorkflowsFunc := search.SearchWorkflowsFunc
		defer func() { search.SearchWorkflowsFunc = searchWorkflowsFunc }()
		search.SearchWorkflowsFunc = func(q domain.WorkflowQuery, s *session.Session) ([]indices.WorkflowDocument, error) {
			Expect(q.TriggerRef).To(Equal("MNT-1"))
			Expect(q.Status).To(Equal(state.HeaderCompleted))
			return []indices.WorkflowDocument{{WorkflowSnapshot: domain.WorkflowSnapshot{
				Header: domain.WorkflowHeader{ID: 100, TriggerRef: "MNT-1", OrgID: 1, Status: state.HeaderCompleted},
			}}}, nil
		}

		req := httptest.NewRequest(http.MethodGet,
			servehttp.PathWorkflowDocuments+"?triggerRef=MNT-1&status=COMPLETED", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`[{
			"header": {"id": "100", "triggerRef": "MNT-1", "categoryKey": "", "orgId": "1",
				"branchCode": "", "status": "COMPLETED",
				"createTime": null, "creatorId": "0", "creatorName": "",
				"changeTime": null, "changerId": "0", "changerName": ""},
			"details": null,
			"histories": null
		}]`))
	})

	t.Run("should respond 500 on a search failure", func(t *testing.T) {
		searchWorkflowsFunc := search.SearchWorkflowsFunc
		defer func() { search.SearchWorkflowsFunc = searchWorkflowsFunc }()
		search.SearchWorkflowsFunc = func(q domain.WorkflowQuery, s *session.Session) ([]indices.WorkflowDocument, error) {
			return nil, errors.New("error on search workflows")
		}

		req := httptest.NewRequest(http.MethodGet, servehttp.PathWorkflowDocuments, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error", "message":"error on search workflows", "data":null}`))
	})
}
