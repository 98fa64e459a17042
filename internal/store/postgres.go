package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Postgres stores every document as one JSONB row. Set and Update are
// last-write-wins at the whole-document and top-level-field granularity
// respectively, matching the hosted-store semantics the rest of the
// system assumes. Live subscriptions re-list on bus notifications.
type Postgres struct {
	db        *gorm.DB
	bus       Bus
	namespace string
	log       *zap.Logger
}

type documentRow struct {
	Namespace  string `gorm:"primaryKey;size:64"`
	Collection string `gorm:"primaryKey;size:64"`
	ID         string `gorm:"primaryKey;size:64"`
	Data       []byte `gorm:"type:jsonb"`
}

func (documentRow) TableName() string { return "documents" }

func NewPostgres(dsn, namespace string, bus Bus, log *zap.Logger) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}
	return &Postgres{db: db, bus: bus, namespace: namespace, log: log}, nil
}

func (p *Postgres) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := p.write(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return p.write(ctx, collection, id, data)
}

func (p *Postgres) write(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	row := documentRow{Namespace: p.namespace, Collection: collection, ID: id, Data: raw}
	err = p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "collection"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("write document %s/%s: %w", collection, id, err)
	}
	return p.bus.Publish(ctx, collection)
}

func (p *Postgres) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	doc, err := p.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range partial {
		doc.Data[k] = v
	}
	return p.write(ctx, collection, id, doc.Data)
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	err := p.db.WithContext(ctx).
		Where("namespace = ? AND collection = ? AND id = ?", p.namespace, collection, id).
		Delete(&documentRow{}).Error
	if err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return p.bus.Publish(ctx, collection)
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	var row documentRow
	err := p.db.WithContext(ctx).
		Where("namespace = ? AND collection = ? AND id = ?", p.namespace, collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	return decodeRow(row)
}

func (p *Postgres) List(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	q := p.db.WithContext(ctx).
		Where("namespace = ? AND collection = ?", p.namespace, collection)
	if filter != nil {
		q = q.Where("data->>? = ?", filter.Field, fmt.Sprint(filter.Value))
	}

	var rows []documentRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list collection %s: %w", collection, err)
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (p *Postgres) Subscribe(ctx context.Context, collection string, filter *Filter) (*Subscription, error) {
	docs, err := p.List(ctx, collection, filter)
	if err != nil {
		return nil, err
	}

	sub := &pgSub{ch: make(chan []Document, 1)}
	push(sub.ch, docs)

	list := func() ([]Document, error) {
		return p.List(context.Background(), collection, filter)
	}
	cancel := p.bus.Listen(func(changed string) {
		if changed != collection {
			return
		}
		sub.refresh(list, p.log, collection)
	})

	closeFn := func() {
		cancel()
		sub.mu.Lock()
		defer sub.mu.Unlock()
		sub.closed = true
		close(sub.ch)
	}
	return newSubscription(sub.ch, closeFn), nil
}

// pgSub guards snapshot delivery for one change-bus subscription.
type pgSub struct {
	mu     sync.Mutex
	closed bool
	ch     chan []Document
}

// refresh re-lists and pushes the new snapshot. A failed re-list keeps
// the previous snapshot and is logged, never dropped silently.
func (s *pgSub) refresh(list func() ([]Document, error), log *zap.Logger, collection string) {
	docs, err := list()
	if err != nil {
		log.Error("subscription refresh failed",
			zap.String("collection", collection),
			zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	push(s.ch, docs)
}

func decodeRow(row documentRow) (Document, error) {
	data := map[string]any{}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &data); err != nil {
			return Document{}, fmt.Errorf("decode document %s/%s: %w", row.Collection, row.ID, err)
		}
	}
	return Document{ID: row.ID, Data: data}, nil
}
