// Package reader is the read-side data access layer for the spectosoft CLI.
//
// The pending command and the TUI browser render the same inventory
// shapes, so the store traversal lives here rather than in either
// consumer.
package reader

import (
	"github.com/sayandeep-bot/spectosoft/pending"
	"github.com/sayandeep-bot/spectosoft/types"
)

// KindInventory summarizes the pending backlog for one artifact kind.
type KindInventory struct {
	Kind  string         `json:"kind"`
	Count int            `json:"count"`
	Bytes int64          `json:"bytes"`
	Days  []DayInventory `json:"days,omitempty"`
}

// DayInventory summarizes one day directory within a kind.
type DayInventory struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
	Bytes int64  `json:"bytes"`
}

// Inventory reads the pending backlog for every artifact kind, in the
// canonical kind order. Kinds with nothing pending still appear, with
// zero counts, so consumers always see the full set.
func Inventory(store *pending.Store) ([]KindInventory, error) {
	kinds := types.Kinds()
	out := make([]KindInventory, 0, len(kinds))
	for _, kind := range kinds {
		stats, err := store.Stats(kind)
		if err != nil {
			return nil, err
		}
		inv := KindInventory{
			Kind:  string(kind),
			Count: stats.Count,
			Bytes: stats.Bytes,
		}
		for _, day := range stats.Days {
			inv.Days = append(inv.Days, DayInventory{
				Day:   day.Day,
				Count: day.Count,
				Bytes: day.Bytes,
			})
		}
		out = append(out, inv)
	}
	return out, nil
}
