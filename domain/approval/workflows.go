package approval

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/domain/history"
	"assetflow/persistence"
	"assetflow/session"
	"assetflow/tenant"
	"context"

	"github.com/fundwit/go-commons/types"
)

var (
	DetailWorkflowFunc = DetailWorkflow
	QueryWorkflowsFunc = QueryWorkflows
	LoadWorkflowsFunc  = LoadWorkflows
)

// DetailWorkflow returns the header with its detail rows in ascending
// sequence order and the full history of the process.
func DetailWorkflow(headerId, orgId types.ID, s *session.Session) (*domain.WorkflowSnapshot, error) {
	db, err := tenant.GormDB(s.Context, orgId)
	if err != nil {
		return nil, err
	}

	snapshot := domain.WorkflowSnapshot{}
	if err := db.Where(&domain.WorkflowHeader{ID: headerId}).First(&snapshot.Header).Error; err != nil {
		return nil, err
	}
	if !s.Perms.HasOrgViewPerm(snapshot.Header.OrgID) {
		return nil, bizerror.ErrForbidden
	}

	if err := db.Where(&domain.WorkflowDetail{HeaderID: headerId}).
		Order("sequence ASC").Find(&snapshot.Details).Error; err != nil {
		return nil, err
	}
	if snapshot.Details == nil {
		snapshot.Details = []domain.WorkflowDetail{}
	}

	histories, err := history.QueryHistories(headerId, db)
	if err != nil {
		return nil, err
	}
	snapshot.Histories = histories

	return &snapshot, nil
}

func QueryWorkflows(query *domain.WorkflowQuery, s *session.Session) (*[]domain.WorkflowHeader, error) {
	db, err := tenant.GormDB(s.Context, query.OrgID)
	if err != nil {
		return nil, err
	}

	q := db.Where(domain.WorkflowHeader{OrgID: query.OrgID, CategoryKey: query.CategoryKey, Status: query.Status})
	if query.TriggerRef != "" {
		q = q.Where("trigger_ref = ?", query.TriggerRef)
	}
	visibleOrgs := s.VisibleOrgs()
	if len(visibleOrgs) == 0 {
		return &[]domain.WorkflowHeader{}, nil
	}
	q = q.Where("org_id in (?)", visibleOrgs).Order("create_time DESC")

	var headers []domain.WorkflowHeader
	if err := q.Find(&headers).Error; err != nil {
		return nil, err
	}
	return &headers, nil
}

// LoadWorkflows pages over all workflows of a single data source,
// snapshots included. It serves batch jobs, not user queries, so no
// permission filter applies.
func LoadWorkflows(ds *persistence.DataSourceManager, page, pageSize int) ([]domain.WorkflowSnapshot, error) {
	db := ds.GormDB(context.Background())

	var headers []domain.WorkflowHeader
	if err := db.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&headers).Error; err != nil {
		return nil, err
	}

	snapshots := make([]domain.WorkflowSnapshot, 0, len(headers))
	for _, header := range headers {
		snapshot := domain.WorkflowSnapshot{Header: header, Details: []domain.WorkflowDetail{}}
		if err := db.Where(&domain.WorkflowDetail{HeaderID: header.ID}).
			Order("sequence ASC").Find(&snapshot.Details).Error; err != nil {
			return nil, err
		}
		histories, err := history.QueryHistories(header.ID, db)
		if err != nil {
			return nil, err
		}
		snapshot.Histories = histories
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}
