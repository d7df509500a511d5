package service

import (
	"log"

	"classboard/internal/domain"
	"classboard/internal/websocket"
)

// ChangeNotifier fans a change out to the owner's other connected clients.
type ChangeNotifier interface {
	Notify(event domain.ChangeEvent, originClientID string)
}

type HubNotifier struct {
	wsManager *websocket.Manager
}

func NewHubNotifier(wsManager *websocket.Manager) *HubNotifier {
	return &HubNotifier{
		wsManager: wsManager,
	}
}

func (n *HubNotifier) Notify(event domain.ChangeEvent, originClientID string) {
	msg, err := websocket.NewMessage(websocket.TypeInvalidate, &event)
	if err != nil {
		log.Printf("failed to build invalidation for %s/%s: %v", event.Collection, event.RecordID, err)
		return
	}

	if err := n.wsManager.BroadcastToUser(event.OwnerID, msg, originClientID); err != nil {
		log.Printf("failed to broadcast invalidation for %s/%s: %v", event.Collection, event.RecordID, err)
	}
}
