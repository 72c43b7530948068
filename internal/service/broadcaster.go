package service

// Event types pushed on a questionnaire's change feed
const (
	EventQuestionnaireUpdated = "questionnaire_updated"
	EventQuestionnaireDeleted = "questionnaire_deleted"
	EventNodeAdded            = "node_added"
	EventNodeMoved            = "node_moved"
	EventNodeUpdated          = "node_updated"
	EventNodeDeleted          = "node_deleted"
	EventEdgeAdded            = "edge_added"
	EventEdgeDeleted          = "edge_deleted"
	EventEditorDiagnostic     = "editor_diagnostic"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	Broadcast(questionnaireID string, msgType string, payload interface{})
	Disconnect(questionnaireID string)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, string, interface{}) {}
func (nopBroadcaster) Disconnect(string)                     {}
