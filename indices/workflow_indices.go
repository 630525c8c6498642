package indices

import (
	"assetflow/account"
	"assetflow/authority"
	"assetflow/domain"
	"assetflow/domain/approval"
	"assetflow/es"
	"assetflow/session"
	"context"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	WorkflowIndexName = "asset-workflows"

	WorkflowIndexHandlerName = "workflowIndexer"
)

type WorkflowDocument struct {
	domain.WorkflowSnapshot
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func indexRobotSession() *session.Session {
	return &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{account.SystemViewPermission.ID},
		Context:  context.Background(),
	}
}

// WorkflowIndexTerminalHandler indexes a workflow once it reaches a
// terminal status.
var WorkflowIndexTerminalHandler = approval.TerminalHandler{
	Name: WorkflowIndexHandlerName,
	Handle: func(header *domain.WorkflowHeader, s *session.Session) error {
		snapshot, err := approval.DetailWorkflowFunc(header.ID, header.OrgID, indexRobotSession())
		if err != nil {
			return fmt.Errorf("detail workflow %d when indexing: %v", header.ID, err)
		}
		return IndexWorkflows([]domain.WorkflowSnapshot{*snapshot})
	},
}

func IndexWorkflows(snapshots []domain.WorkflowSnapshot) error {
	docs := make([]WorkflowDocument, 0, len(snapshots))
	for _, snapshot := range snapshots {
		docs = append(docs, WorkflowDocument{WorkflowSnapshot: snapshot})
	}

	if err := saveWorkflowDocuments(docs); err != nil {
		return err
	}
	return nil
}

func saveWorkflowDocuments(docs []WorkflowDocument) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(WorkflowIndexName, doc.Header.ID, doc); err != nil {
			errs[doc.Header.ID] = err
			logrus.Warnf("index workflow %d %s %s\n", doc.Header.ID, doc.Header.TriggerRef, err)
		} else {
			logrus.Infof("index workflow %d %s successfully\n", doc.Header.ID, doc.Header.TriggerRef)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
