package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

// Domain event names, namespaced by domain and verb. Rooms, notifications
// and the search index all key off these.
const (
	EventNcCreated   = "nc:created"
	EventNcUpdated   = "nc:updated"
	EventNcValidated = "nc:validated"
	EventNcDeleted   = "nc:deleted"

	EventPlanVersionAdded = "plan:versionAdded"
	EventStockUpdated     = "stock:updated"
	EventToolAssigned     = "tool:assigned"
	EventToolReturned     = "tool:returned"

	EventProjectMemberAdded   = "project:memberAdded"
	EventProjectMemberRemoved = "project:memberRemoved"

	EventMilestoneCompleted = "milestone:completed"
	EventInvoiceUpdated     = "invoice:updated"

	EventNotification = "notification"
)

type Event struct {
	Name string `json:"name"`

	SourceType string   `json:"sourceType"`
	SourceID   types.ID `json:"sourceId"`
	ProjectID  types.ID `json:"projectId"`

	// TargetUserID marks events addressed to one user (e.g. an NC
	// assignment); zero for purely project-scoped events.
	TargetUserID types.ID `json:"targetUserId"`

	Payload Payload `json:"payload" sql:"type:TEXT"`

	CreatorID   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`
}

type EventRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Event

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
	Synced    bool            `json:"synced"`
}

func (r *EventRecord) TableName() string {
	return "events"
}

// Payload is a free-form JSON object stored as TEXT.
type Payload map[string]interface{}

func (p Payload) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&p)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (p *Payload) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonBytes, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonBytes)
	}
	return json.Unmarshal([]byte(jsonString), p)
}
