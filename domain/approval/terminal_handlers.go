package approval

import (
	"assetflow/domain"
	"assetflow/session"

	"github.com/sirupsen/logrus"
)

type TerminalHandler struct {
	Name   string
	Handle func(header *domain.WorkflowHeader, s *session.Session) error
}

var (
	terminalHandlers []TerminalHandler

	InvokeTerminalHandlersFunc = InvokeTerminalHandlers
)

// RegisterTerminalHandler appends a callback invoked after the transaction
// of a terminal (Completed or Cancelled) header commits.
func RegisterTerminalHandler(h TerminalHandler) {
	terminalHandlers = append(terminalHandlers, h)
}

func ClearTerminalHandlers() {
	terminalHandlers = nil
}

func InvokeTerminalHandlers(header *domain.WorkflowHeader, s *session.Session) {
	for _, handler := range terminalHandlers {
		if err := handler.Handle(header, s); err != nil {
			logrus.Warnf("terminal handler %s failed for workflow %s: %v", handler.Name, header.ID.String(), err)
		}
	}
}
