// Package dispatch issues writes to the document store in response to
// user actions. Nothing here mutates view state locally: the UI catches
// up when the corresponding subscription delivers its next snapshot.
// Every operation returns once the store acknowledges the write, and
// every failure is an explicit error for the transport layer to surface.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/syrixgg/ops-hub/internal/records"
	"github.com/syrixgg/ops-hub/internal/store"
	"github.com/syrixgg/ops-hub/internal/veto"
	"go.uber.org/zap"
)

var (
	ErrEmptyText = errors.New("empty or whitespace-only text")
	ErrBadCoords = errors.New("pin coordinates out of range")
)

type Dispatcher struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

func New(st store.Store, log *zap.Logger) *Dispatcher {
	return &Dispatcher{store: st, log: log, now: time.Now}
}

// PostShout appends a chat message. The creation timestamp is assigned
// here, server-side, and is the chat feed's sort key.
func (d *Dispatcher) PostShout(ctx context.Context, author, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if author == "" {
		author = records.DefaultAuthor
	}
	_, err := d.store.Add(ctx, records.CollectionChat, map[string]any{
		"author":    author,
		"text":      text,
		"createdAt": d.now().UTC().Format(records.TimeLayout),
	})
	if err != nil {
		return fmt.Errorf("post shout: %w", err)
	}
	return nil
}

func (d *Dispatcher) RegisterAbsence(ctx context.Context, user, start, end string) error {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return ErrEmptyText
	}
	_, err := d.store.Add(ctx, records.CollectionAbsences, map[string]any{
		"user":  user,
		"start": start,
		"end":   end,
	})
	if err != nil {
		return fmt.Errorf("register absence: %w", err)
	}
	return nil
}

func (d *Dispatcher) AddMatch(ctx context.Context, opponent, date, mapName, result string) error {
	if strings.TrimSpace(opponent) == "" {
		return ErrEmptyText
	}
	_, err := d.store.Add(ctx, records.CollectionMatches, map[string]any{
		"opponent": opponent,
		"date":     date,
		"map":      mapName,
		"result":   result,
	})
	if err != nil {
		return fmt.Errorf("add match: %w", err)
	}
	return nil
}

// AddDossier creates an opponent dossier with the default threat level
// and an empty intel map.
func (d *Dispatcher) AddDossier(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyText
	}
	id, err := d.store.Add(ctx, records.CollectionDossiers, map[string]any{
		"name":     name,
		"threat":   "Medium",
		"mapIntel": map[string]any{},
	})
	if err != nil {
		return "", fmt.Errorf("add dossier: %w", err)
	}
	return id, nil
}

// SaveMapIntel merges one map key into a dossier's intel via
// read-modify-write. Edits to different dossiers are independent;
// concurrent edits to the same dossier's same key last-write-win.
func (d *Dispatcher) SaveMapIntel(ctx context.Context, dossierID, mapName, text string) error {
	doc, err := d.store.Get(ctx, records.CollectionDossiers, dossierID)
	if err != nil {
		return fmt.Errorf("load dossier: %w", err)
	}

	intel := map[string]any{}
	if raw, ok := doc.Data["mapIntel"].(map[string]any); ok {
		for k, v := range raw {
			intel[k] = v
		}
	}
	intel[mapName] = text

	if err := d.store.Update(ctx, records.CollectionDossiers, dossierID, map[string]any{
		"mapIntel": intel,
	}); err != nil {
		return fmt.Errorf("save intel: %w", err)
	}
	return nil
}

func (d *Dispatcher) DeleteDossier(ctx context.Context, dossierID string) error {
	if err := d.store.Delete(ctx, records.CollectionDossiers, dossierID); err != nil {
		return fmt.Errorf("delete dossier: %w", err)
	}
	return nil
}

// DropPin stores a lineup pin. Coordinates must already be normalized
// to percent of the map image's bounding box.
func (d *Dispatcher) DropPin(ctx context.Context, pin records.LineupPin) (string, error) {
	if strings.TrimSpace(pin.Title) == "" {
		return "", ErrEmptyText
	}
	if pin.X < 0 || pin.X > 100 || pin.Y < 0 || pin.Y > 100 {
		return "", ErrBadCoords
	}
	author := pin.Author
	if author == "" {
		author = records.DefaultAuthor
	}
	id, err := d.store.Add(ctx, records.CollectionLineups, map[string]any{
		"map":    pin.Map,
		"x":      pin.X,
		"y":      pin.Y,
		"title":  pin.Title,
		"url":    pin.URL,
		"author": author,
	})
	if err != nil {
		return "", fmt.Errorf("drop pin: %w", err)
	}
	return id, nil
}

func (d *Dispatcher) DeletePin(ctx context.Context, pinID string) error {
	if err := d.store.Delete(ctx, records.CollectionLineups, pinID); err != nil {
		return fmt.Errorf("delete pin: %w", err)
	}
	return nil
}

// ToggleVeto cycles one map's veto status. It reads the latest board and
// overwrites the whole document with that snapshot plus the one change;
// concurrent togglers race and the last writer wins (see package veto).
func (d *Dispatcher) ToggleVeto(ctx context.Context, mapName string) error {
	board := veto.Board{}
	doc, err := d.store.Get(ctx, records.CollectionGeneral, records.VetoDocID)
	switch {
	case err == nil:
		board = veto.FromDoc(doc)
	case errors.Is(err, store.ErrNotFound):
		// First toggle ever: start from an empty board.
	default:
		return fmt.Errorf("load veto board: %w", err)
	}

	next, err := veto.Toggle(board, mapName, records.MapPool)
	if err != nil {
		return err
	}

	d.log.Info("veto toggle",
		zap.String("map", mapName),
		zap.String("status", string(next.StatusOf(mapName))))

	if err := d.store.Set(ctx, records.CollectionGeneral, records.VetoDocID, next.ToDoc()); err != nil {
		return fmt.Errorf("write veto board: %w", err)
	}
	return nil
}

// ResetVeto replaces the board with an empty document.
func (d *Dispatcher) ResetVeto(ctx context.Context) error {
	if err := d.store.Set(ctx, records.CollectionGeneral, records.VetoDocID, map[string]any{}); err != nil {
		return fmt.Errorf("reset veto board: %w", err)
	}
	return nil
}
