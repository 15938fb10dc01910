package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period         string            `json:"period"`
	EventCounts    map[EventType]int `json:"event_counts"`
	Collections    int               `json:"collections"`
	CollectedByRes map[string]int    `json:"collected_by_resource"`
	CoinsEarned    float64           `json:"coins_earned"`
	CoinsSpent     float64           `json:"coins_spent"`
	DiamsSpent     float64           `json:"diams_spent"`
	CraftsStarted  int               `json:"crafts_started"`
	CraftsClaimed  int               `json:"crafts_claimed"`
	CardsBought    map[string]int    `json:"cards_bought"`
	DailyClaims    int               `json:"daily_claims"`
	LevelUps       int               `json:"level_ups"`
}

// CalculateStats computes balance stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:         since.Format("2006-01-02"),
		EventCounts:    make(map[EventType]int),
		CollectedByRes: make(map[string]int),
		CardsBought:    make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventCollect:
			stats.Collections++
			if res, ok := metadata["resource"].(string); ok {
				stats.CollectedByRes[res]++
			}
		case EventResourceSold:
			if coins, ok := metadata["coins"].(float64); ok {
				stats.CoinsEarned += coins
			}
		case EventDailyClaimed:
			stats.DailyClaims++
			if coins, ok := metadata["coins"].(float64); ok {
				stats.CoinsEarned += coins
			}
		case EventCardPurchased:
			if card, ok := metadata["card"].(string); ok {
				stats.CardsBought[card]++
			}
			if coins, ok := metadata["coins"].(float64); ok {
				stats.CoinsSpent += coins
			}
			if diams, ok := metadata["diams"].(float64); ok {
				stats.DiamsSpent += diams
			}
		case EventLandSlotPurchased:
			if diams, ok := metadata["diams"].(float64); ok {
				stats.DiamsSpent += diams
			}
		case EventCraftStarted:
			stats.CraftsStarted++
		case EventCraftClaimed:
			stats.CraftsClaimed++
		case EventLevelUp:
			stats.LevelUps++
		}
	}

	return stats, nil
}
