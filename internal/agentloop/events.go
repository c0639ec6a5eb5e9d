package agentloop

import "github.com/wayfarerhq/pilot/pkg/models"

func emitLog(events chan<- *models.AgentEvent, message string) {
	events <- &models.AgentEvent{Type: models.EventLog, Message: message, Timestamp: now()}
}

func emitError(events chan<- *models.AgentEvent, message string) {
	events <- &models.AgentEvent{Type: models.EventError, Message: message, Timestamp: now()}
}
