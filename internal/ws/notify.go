package ws

import (
	"encoding/json"
	"time"

	"fluentpro/internal/domain/onboarding"

	"github.com/google/uuid"
)

type ProgressEvent struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Phase     string `json:"phase"`
	NextStep  string `json:"next_step"`
	Timestamp string `json:"timestamp"`
}

// ProgressNotifier broadcasts phase transitions to connected clients. The
// hub drops on a full buffer, so notification never blocks a write path.
type ProgressNotifier struct {
	hub *Hub
}

func NewProgressNotifier(hub *Hub) *ProgressNotifier {
	return &ProgressNotifier{hub: hub}
}

func (n *ProgressNotifier) OnboardingAdvanced(userID uuid.UUID, phase onboarding.Phase) {
	if n == nil || n.hub == nil {
		return
	}

	evt := ProgressEvent{
		Type:      "onboarding_progress",
		UserID:    userID.String(),
		Phase:     string(phase),
		NextStep:  onboarding.NextStep(phase),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}
