package message

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

const (
	ActionUpsert = "UPSERT"
	ActionDelete = "DELETE"
)

// errMalformedEvent はリトライしても成功しないイベントを示します。
var errMalformedEvent = errors.New("malformed catalog event")

// CatalogEvent はカタログ変更イベントのペイロードスキーマです。
//
//	{"payload": {"kind": "job", "action": "UPSERT", "id": "...", "document": {...}}}
type CatalogEvent struct {
	Payload struct {
		Kind     port.DocumentKind `json:"kind"`
		Action   string            `json:"action"`
		ID       string            `json:"id"`
		Document json.RawMessage   `json:"document"`
	} `json:"payload"`
}

func decodeEvent(raw []byte) (*CatalogEvent, error) {
	var ev CatalogEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedEvent, err)
	}

	p := ev.Payload
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", errMalformedEvent, p.Kind)
	}
	switch p.Action {
	case ActionUpsert:
		if len(p.Document) == 0 {
			return nil, fmt.Errorf("%w: upsert without document", errMalformedEvent)
		}
	case ActionDelete:
		if p.ID == "" {
			return nil, fmt.Errorf("%w: delete without id", errMalformedEvent)
		}
	default:
		return nil, fmt.Errorf("%w: unknown action %q", errMalformedEvent, p.Action)
	}
	return &ev, nil
}

// decodeDocument は document を T として読み込み、ペイロードの id で上書きします。
func decodeDocument[T any](raw json.RawMessage, setID func(*T, string), id string) (T, error) {
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if id != "" {
		setID(&doc, id)
	}
	return doc, nil
}
