package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hrmgo/internal/platform/db"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

func (e Event) Field(name string) (any, bool) {
	switch name {
	case "id":
		return e.ID, true
	case "actorId":
		return e.ActorID, true
	case "action":
		return e.Action, true
	case "entityType":
		return e.EntityType, true
	case "entityId":
		return e.EntityID, true
	case "requestId":
		return e.RequestID, true
	case "ip":
		return e.IP, true
	case "createdAt":
		return e.CreatedAt, true
	}
	return nil, false
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

// Entry is one change to record. Before and After are marshalled to JSON when set.
type Entry struct {
	TenantID   string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Before     any
	After      any
}

type Service struct {
	DB db.DBTX
}

func New(conn db.DBTX) *Service {
	return &Service{DB: conn}
}

func (s *Service) Record(ctx context.Context, e Entry) error {
	beforeJSON, err := marshalOptional(e.Before)
	if err != nil {
		return fmt.Errorf("marshal before: %w", err)
	}
	afterJSON, err := marshalOptional(e.After)
	if err != nil {
		return fmt.Errorf("marshal after: %w", err)
	}

	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_events (tenant_id, actor_user_id, action, entity_type, entity_id, before_json, after_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
  `, e.TenantID, db.NullIfEmpty(e.ActorID), e.Action, e.EntityType, db.NullIfEmpty(e.EntityID),
		beforeJSON, afterJSON, db.NullIfEmpty(e.RequestID), db.NullIfEmpty(e.IP))
	return err
}

func marshalOptional(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// List returns every matching event, newest first. Paging happens in the caller's table controller.
func (s *Service) List(ctx context.Context, tenantID string, filter Filter, includeDetails bool) ([]Event, error) {
	selectCols := `id, COALESCE(actor_user_id::text, ''), action, entity_type, COALESCE(entity_id, ''),
           COALESCE(request_id, ''), COALESCE(ip, ''), created_at`
	if includeDetails {
		selectCols += ", before_json, after_json"
	}
	query, args := buildBaseQuery("SELECT "+selectCols, tenantID, filter)
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		dest := []any{&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt}
		if includeDetails {
			dest = append(dest, &evt.Before, &evt.After)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix, tenantID string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", len(args)+1)
		args = append(args, filter.EntityType)
	}
	if filter.ActorUser != "" {
		query += fmt.Sprintf(" AND actor_user_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorUser)
	}
	return query, args
}
