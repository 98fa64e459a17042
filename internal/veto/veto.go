// Package veto holds the pre-match map veto board: one shared status per
// map, cycled neutral -> ban -> pick -> neutral.
//
// The board is stored as a single document and every toggle overwrites it
// wholesale with the previous snapshot plus one changed key. Two clients
// toggling concurrently therefore race and the last write wins on the
// whole document, not per key. That matches the source system; callers
// wanting stronger consistency need a version-token scheme on top.
package veto

import (
	"errors"
	"maps"

	"github.com/syrixgg/ops-hub/internal/store"
)

var ErrUnknownMap = errors.New("map not in pool")

type Status string

const (
	StatusNeutral Status = "neutral"
	StatusBan     Status = "ban"
	StatusPick    Status = "pick"
)

// Board maps map name to status. Absent keys are neutral.
type Board map[string]Status

// Next advances one step of the toggle cycle. Anything unrecognized is
// treated as neutral.
func Next(s Status) Status {
	switch s {
	case StatusBan:
		return StatusPick
	case StatusPick:
		return StatusNeutral
	default:
		return StatusBan
	}
}

// Toggle returns a new board equal to b with exactly the given map's
// status advanced. Every other key is preserved; b is not mutated.
func Toggle(b Board, mapName string, pool []string) (Board, error) {
	if !inPool(mapName, pool) {
		return nil, ErrUnknownMap
	}
	next := maps.Clone(b)
	if next == nil {
		next = Board{}
	}
	next[mapName] = Next(b[mapName])
	return next, nil
}

func (b Board) StatusOf(mapName string) Status {
	if s, ok := b[mapName]; ok {
		return s
	}
	return StatusNeutral
}

func inPool(mapName string, pool []string) bool {
	for _, m := range pool {
		if m == mapName {
			return true
		}
	}
	return false
}

// FromDoc decodes the veto document; unknown statuses come back neutral.
func FromDoc(d store.Document) Board {
	b := Board{}
	for k, v := range d.Data {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch Status(s) {
		case StatusBan, StatusPick:
			b[k] = Status(s)
		default:
			b[k] = StatusNeutral
		}
	}
	return b
}

// ToDoc encodes the whole board for a full-document overwrite.
func (b Board) ToDoc() map[string]any {
	doc := make(map[string]any, len(b))
	for k, v := range b {
		doc[k] = string(v)
	}
	return doc
}
