package threats

import (
	"context"
	"fmt"
	"sort"

	"threatwatch/core/store"
)

type LevelCount struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type Stats struct {
	Levels     []LevelCount    `json:"levels"`
	Categories []CategoryCount `json:"categories"`
	Monthly    []MonthCount    `json:"monthly"`
}

// Stats folds the whole store into the three dashboard aggregates. It is a
// point-in-time scan, not a materialized view.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	items, err := s.threats.ListThreats(ctx, store.ThreatFilter{})
	if err != nil {
		return nil, fmt.Errorf("stats scan: %w", err)
	}
	levelCounts := map[int]int{}
	categoryCounts := map[string]int{}
	type monthKey struct{ year, month int }
	monthCounts := map[monthKey]int{}

	for _, t := range items {
		if ValidLevel(t.Level) {
			levelCounts[t.Level]++
		}
		for _, c := range t.Categories {
			categoryCounts[c]++
		}
		created := t.CreatedAt.UTC()
		monthCounts[monthKey{created.Year(), int(created.Month())}]++
	}

	// Levels ascending; absent buckets are omitted, absence means zero.
	levels := []LevelCount{}
	for level := MinLevel; level <= MaxLevel; level++ {
		if count, ok := levelCounts[level]; ok {
			levels = append(levels, LevelCount{Level: level, Count: count})
		}
	}

	categories := []CategoryCount{}
	for category, count := range categoryCounts {
		categories = append(categories, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Count != categories[j].Count {
			return categories[i].Count > categories[j].Count
		}
		return categories[i].Category < categories[j].Category
	})

	keys := make([]monthKey, 0, len(monthCounts))
	for k := range monthCounts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	monthly := []MonthCount{}
	for _, k := range keys {
		// M/YYYY without zero padding, the label format the dashboard charts.
		monthly = append(monthly, MonthCount{
			Month: fmt.Sprintf("%d/%d", k.month, k.year),
			Count: monthCounts[k],
		})
	}

	return &Stats{Levels: levels, Categories: categories, Monthly: monthly}, nil
}
