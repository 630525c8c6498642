package servehttp_test

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/domain/sequence"
	"assetflow/servehttp"
	"assetflow/session"
	"assetflow/testinfra"
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestSequenceTemplateRestAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterSequenceTemplateHandler(router)

	t.Run("should return 400 without a category key or org id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/sequence-templates", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))

		req = httptest.NewRequest(http.MethodGet, "/v1/sequence-templates?categoryKey=TYPE_PUMP&orgId=abc", nil)
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should return the steps of a template", func(t *testing.T) {
		ts, timeString := demoTimestamp(t)
		sequence.GetTemplateFunc = func(categoryKey string, orgId types.ID, s *session.Session) ([]domain.SequenceStep, error) {
			Expect(categoryKey).To(Equal("TYPE_PUMP"))
			Expect(orgId).To(Equal(types.ID(1)))
			return []domain.SequenceStep{
				{ID: 20, CategoryKey: "TYPE_PUMP", OrgID: 1, StepOrder: 1, StepRole: "supervisor", CreateTime: ts, CreatorID: 100},
			}, nil
		}
		defer func() { sequence.GetTemplateFunc = sequence.GetTemplate }()

		req := httptest.NewRequest(http.MethodGet, "/v1/sequence-templates?categoryKey=TYPE_PUMP&orgId=1", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`[{"id": "20", "categoryKey": "TYPE_PUMP", "orgId": "1", "stepOrder": 1,
			"stepRole": "supervisor", "createTime": "` + timeString + `", "creatorId": "100"}]`))
	})

	t.Run("should map template not found to 404", func(t *testing.T) {
		sequence.GetTemplateFunc = func(categoryKey string, orgId types.ID, s *session.Session) ([]domain.SequenceStep, error) {
			return nil, bizerror.ErrTemplateNotFound
		}
		defer func() { sequence.GetTemplateFunc = sequence.GetTemplate }()

		req := httptest.NewRequest(http.MethodGet, "/v1/sequence-templates?categoryKey=TYPE_PUMP&orgId=1", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code":"sequence.template_not_found","message":"sequence template not found","data":null}`))
	})

	t.Run("should create a template", func(t *testing.T) {
		sequence.CreateTemplateFunc = func(c *domain.SequenceTemplateCreation, s *session.Session) ([]domain.SequenceStep, error) {
			Expect(c.CategoryKey).To(Equal("TYPE_PUMP"))
			Expect(len(c.Steps)).To(Equal(2))
			return []domain.SequenceStep{}, nil
		}
		defer func() { sequence.CreateTemplateFunc = sequence.CreateTemplate }()

		req := httptest.NewRequest(http.MethodPost, "/v1/sequence-templates", bytes.NewReader([]byte(
			`{"categoryKey": "TYPE_PUMP", "orgId": "1", "steps": [
				{"role": "supervisor", "order": 1}, {"role": "manager", "order": 2}]}`)))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
	})

	t.Run("should map order conflicts on create", func(t *testing.T) {
		sequence.CreateTemplateFunc = func(c *domain.SequenceTemplateCreation, s *session.Session) ([]domain.SequenceStep, error) {
			return nil, bizerror.ErrOrderInvalid
		}
		defer func() { sequence.CreateTemplateFunc = sequence.CreateTemplate }()

		req := httptest.NewRequest(http.MethodPost, "/v1/sequence-templates", bytes.NewReader([]byte(
			`{"categoryKey": "TYPE_PUMP", "orgId": "1", "steps": [{"role": "supervisor", "order": 2}]}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"sequence.order_invalid","message":"step orders are not contiguous","data":null}`))
	})

	t.Run("should clone a template", func(t *testing.T) {
		sequence.CloneTemplateFunc = func(c *domain.SequenceTemplateCloning, s *session.Session) (int, error) {
			Expect(c.SourceKey).To(Equal("TYPE_PUMP"))
			Expect(c.DestKey).To(Equal("TYPE_VALVE"))
			Expect(c.Force).To(BeTrue())
			return 2, nil
		}
		defer func() { sequence.CloneTemplateFunc = sequence.CloneTemplate }()

		req := httptest.NewRequest(http.MethodPost, "/v1/sequence-templates/clones", bytes.NewReader([]byte(
			`{"sourceKey": "TYPE_PUMP", "destKey": "TYPE_VALVE", "orgId": "1", "force": true}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"insertedSteps": 2}`))
	})
}
