package events

import (
	"context"
	"encoding/json"
	"time"
)

// ImportCompleted is published after every CSV import, successful rows or not.
type ImportCompleted struct {
	Entity     string    `json:"entity"`
	Filename   string    `json:"filename"`
	Added      int       `json:"added"`
	Failed     int       `json:"failed"`
	FinishedAt time.Time `json:"finished_at"`
}

func (e ImportCompleted) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	PublishImportCompleted(ctx context.Context, event ImportCompleted) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishImportCompleted(context.Context, ImportCompleted) error { return nil }

func (NoopPublisher) Close() error { return nil }
