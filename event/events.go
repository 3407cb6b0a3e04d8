package event

import (
	"worksite/idgen"
	"worksite/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var eventIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

// CreateEvent persists one domain event within the caller's transaction.
// The record is handed to InvokeHandlersFunc by the caller AFTER the
// transaction commits, never before.
func CreateEvent(name string, sourceType string, sourceID, projectID, targetUserID types.ID,
	payload Payload, identity *session.Identity, db *gorm.DB) (*EventRecord, error) {

	record := EventRecord{
		ID: idgen.NextID(eventIdWorker),
		Event: Event{
			Name:         name,
			SourceType:   sourceType,
			SourceID:     sourceID,
			ProjectID:    projectID,
			TargetUserID: targetUserID,
			Payload:      payload,

			CreatorID:   identity.ID,
			CreatorName: identity.Name,
		},
		Synced:    false,
		Timestamp: types.CurrentTimestamp(),
	}
	if err := EventPersistCreateFunc(&record, db); err != nil {
		return nil, err
	}
	return &record, nil
}
