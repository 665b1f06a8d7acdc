// Package persist serializes the record store and mirrors it, together with the
// app settings, into the key-value table.
package persist

import (
	"encoding/json"
	"time"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/worklog"
)

// Item is the wire form of a record. End is null while the record is running.
type Item struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Tag         string     `json:"tag"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end"`
}

type document struct {
	Items []Item `json:"items"`
}

// envelope accepts the plain document, the backup document and the
// {"json": {...}, "meta": {...}} shape written by older exports.
type envelope struct {
	Items *[]Item         `json:"items"`
	JSON  *document       `json:"json"`
	Meta  json.RawMessage `json:"meta,omitempty"`
}

// ToItems converts records to their wire form.
func ToItems(records []worklog.Record) []Item {
	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = Item{
			ID:          r.ID,
			Description: r.Description,
			Tag:         r.Tag,
			Start:       r.Start,
		}
		if r.End != nil {
			end := *r.End
			items[i].End = &end
		}
	}
	return items
}

// FromItems converts wire items back to records in local time and validates them.
func FromItems(items []Item) ([]worklog.Record, error) {
	records := make([]worklog.Record, len(items))
	for i, it := range items {
		records[i] = worklog.Record{
			ID:          it.ID,
			Description: it.Description,
			Tag:         it.Tag,
			Start:       it.Start.Local(),
		}
		if it.End != nil {
			end := it.End.Local()
			records[i].End = &end
		}
	}
	if err := worklog.Validate(records); err != nil {
		return nil, err
	}
	return records, nil
}

// Encode serializes records as {"items": [...]}.
func Encode(records []worklog.Record) ([]byte, error) {
	data, err := json.Marshal(document{Items: ToItems(records)})
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

// Decode parses any supported document shape into validated records.
func Decode(data []byte) ([]worklog.Record, error) {
	items, err := decodeItems(data)
	if err != nil {
		return nil, err
	}
	return FromItems(items)
}

func decodeItems(data []byte) ([]Item, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.NewInvalidRequest("invalid worklog document: " + err.Error())
	}
	switch {
	case env.Items != nil:
		return *env.Items, nil
	case env.JSON != nil:
		return env.JSON.Items, nil
	default:
		return nil, errors.NewInvalidRequest("invalid worklog document: missing items")
	}
}
