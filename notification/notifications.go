package notification

import (
	"worksite/bizerror"
	"worksite/event"
	"worksite/idgen"
	"worksite/persistence"
	"worksite/rooms"
	"worksite/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

var (
	notificationIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryNotificationsFunc = QueryNotifications
	MarkReadFunc           = MarkRead
)

// Notification is the durable counterpart of a user-addressed realtime
// message: it survives the user being offline when the event fired.
type Notification struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	UserID types.ID `json:"userId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	EventName  string   `json:"eventName"`
	SourceType string   `json:"sourceType"`
	SourceID   types.ID `json:"sourceId"`
	ProjectID  types.ID `json:"projectId"`

	Payload event.Payload `json:"payload" sql:"type:TEXT"`

	IsRead     bool            `json:"isRead"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

// AsEventHandler stores a notification for every user-addressed event and
// pushes a realtime hint to the user's room. Runs after the originating
// transaction committed; a failure here never reaches the publisher.
func AsEventHandler(b *rooms.Broadcaster) event.EventHandler {
	return func(r *event.EventRecord) *event.EventHandleResult {
		if r.TargetUserID.IsZero() {
			return nil
		}

		n := Notification{
			ID:     idgen.NextID(notificationIdWorker),
			UserID: r.TargetUserID,

			EventName: r.Name, SourceType: r.SourceType,
			SourceID: r.SourceID, ProjectID: r.ProjectID,
			Payload: r.Payload,

			CreateTime: types.CurrentTimestamp(),
		}
		db := persistence.ActiveDataSourceManager.GormDB(nil)
		if err := db.Create(&n).Error; err != nil {
			return &event.EventHandleResult{Success: false, Message: err.Error(),
				HandlerIdentifier: "notifications"}
		}

		if b != nil {
			b.Publish(rooms.UserRoom(r.TargetUserID), event.EventNotification, n)
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: "notifications"}
	}
}

// QueryNotifications lists the caller's own notifications, unread first.
func QueryNotifications(sec *session.Session) (*[]Notification, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var records []Notification
	if err := db.Where("user_id = ?", sec.Identity.ID).
		Order("is_read ASC, create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

// MarkRead flips one of the caller's notifications; other users' rows are
// invisible to the update.
func MarkRead(id types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	updating := db.Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, sec.Identity.ID).
		Update("is_read", true)
	if updating.Error != nil {
		return updating.Error
	}
	if updating.RowsAffected != 1 {
		return bizerror.ErrNotFound
	}
	return nil
}
