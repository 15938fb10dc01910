package telemetry

import "time"

type EventType string

const (
	EventPlayerRegistered  EventType = "player_registered"
	EventCollect           EventType = "collect"
	EventTileUnlocked      EventType = "tile_unlocked"
	EventLevelUp           EventType = "level_up"
	EventCraftStarted      EventType = "craft_started"
	EventCraftClaimed      EventType = "craft_claimed"
	EventCardPurchased     EventType = "card_purchased"
	EventResourceSold      EventType = "resource_sold"
	EventDailyClaimed      EventType = "daily_claimed"
	EventLandSlotPurchased EventType = "land_slot_purchased"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
