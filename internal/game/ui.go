package game

import (
	"log/slog"
	"time"

	"github.com/pixil98/mailsphere/internal/events"
)

const (
	DefaultToggleDebounce       = 250 * time.Millisecond
	DefaultNotificationDuration = 3 * time.Second

	notificationTimerKey = "notification"
)

// Panel is a UI overlay the player can open and close.
type Panel string

const (
	PanelQuestLog  Panel = "quest_log"
	PanelInventory Panel = "inventory"
	PanelMap       Panel = "map"
)

type UIState struct {
	QuestLogOpen  bool `json:"quest_log_open"`
	InventoryOpen bool `json:"inventory_open"`
	MapOpen       bool `json:"map_open"`
}

func (u *UIState) flag(p Panel) *bool {
	switch p {
	case PanelQuestLog:
		return &u.QuestLogOpen
	case PanelInventory:
		return &u.InventoryOpen
	case PanelMap:
		return &u.MapOpen
	}
	return nil
}

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

type Notification struct {
	Type     NotificationType `json:"type"`
	Message  string           `json:"message"`
	Duration time.Duration    `json:"duration"`
}

// TogglePanel flips a panel open or closed. A toggle of the same panel
// within the debounce interval of the previous one is ignored. Returns
// whether the toggle took effect.
func (s *Store) TogglePanel(p Panel) bool {
	flag := s.state.UI.flag(p)
	if flag == nil {
		return false
	}

	now := s.timers.Now()
	if last, ok := s.lastToggle[p]; ok && now-last < s.toggleDebounce {
		slog.Debug("ignoring debounced toggle", "panel", p)
		return false
	}

	s.lastToggle[p] = now
	*flag = !*flag
	return true
}

func (s *Store) ToggleQuestLog() bool {
	return s.TogglePanel(PanelQuestLog)
}

func (s *Store) ToggleInventory() bool {
	return s.TogglePanel(PanelInventory)
}

func (s *Store) ToggleMap() bool {
	return s.TogglePanel(PanelMap)
}

// ShowNotification replaces the current notification and clears it once
// duration has passed. A non-positive duration uses the default.
func (s *Store) ShowNotification(typ NotificationType, message string, duration time.Duration) {
	if duration <= 0 {
		duration = DefaultNotificationDuration
	}

	s.state.Notification = &Notification{
		Type:     typ,
		Message:  message,
		Duration: duration,
	}
	s.timers.Schedule(notificationTimerKey, duration, s.ClearNotification)

	s.publish(events.Notification, map[string]any{
		"type":    string(typ),
		"message": message,
	})
}

// ClearNotification removes the current notification, if any.
func (s *Store) ClearNotification() {
	s.state.Notification = nil
	s.timers.Cancel(notificationTimerKey)
}
