package search

import (
	"assetflow/domain"
	"assetflow/es"
	"assetflow/indices"
	"assetflow/session"
	"encoding/json"
	"fmt"
	"strings"
)

var (
	SearchWorkflowsFunc = SearchWorkflows
)

// SearchWorkflows queries the workflow index instead of the tenant
// databases. Only terminal workflows ever reach the index, so the result is
// the searchable audit trail, not the live state.
func SearchWorkflows(q domain.WorkflowQuery, s *session.Session) ([]indices.WorkflowDocument, error) {
	visibleOrgs := s.VisibleOrgs()
	if len(visibleOrgs) == 0 {
		return []indices.WorkflowDocument{}, nil
	}

	filters := make([]es.H, 0, 5)
	filters = append(filters, es.H{"terms": es.H{"header.orgId": visibleOrgs}})
	if q.OrgID != 0 {
		filters = append(filters, es.H{"term": es.H{"header.orgId": q.OrgID}})
	}
	if q.TriggerRef != "" {
		filters = append(filters, es.H{"term": es.H{"header.triggerRef": q.TriggerRef}})
	}
	if q.CategoryKey != "" {
		filters = append(filters, es.H{"term": es.H{"header.categoryKey": q.CategoryKey}})
	}
	if q.Status != "" {
		filters = append(filters, es.H{"term": es.H{"header.status": q.Status}})
	}

	query := es.H{
		"size":  10000,
		"query": es.H{"bool": es.H{"filter": filters}},
		"sort":  []es.H{{"header.createTime": es.H{"order": "desc"}}},
	}
	r, err := es.SearchFunc(indices.WorkflowIndexName, query, s.Context)
	if err != nil {
		return nil, err
	}

	docs := make([]indices.WorkflowDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := indices.WorkflowDocument{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode workflow document %s: %v", hit.Id, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
