package audit

import (
	"worksite/idgen"
	"worksite/persistence"
	"worksite/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	auditIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	// ActiveAuditLogger is assigned once at startup.
	ActiveAuditLogger *Logger
)

// AuditLog is an append-only best-effort record of who did what. Absence
// of an entry is not a correctness failure.
type AuditLog struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	UserID     types.ID `json:"userId"`
	Action     string   `json:"action"`
	Method     string   `json:"method"`
	Path       string   `json:"path"`
	StatusCode int      `json:"statusCode"`
	IP         string   `json:"ip"`

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
}

// Logger decouples audit writes from the request lifecycle: middleware
// offers entries to a bounded queue, an independent worker inserts them.
// A full queue or a failed insert never affects the response.
type Logger struct {
	queue chan AuditLog
	done  chan struct{}
}

func NewLogger(queueSize int) *Logger {
	return &Logger{queue: make(chan AuditLog, queueSize), done: make(chan struct{})}
}

// Start launches the insert worker. The returned function drains and stops.
func (l *Logger) Start() func() {
	go func() {
		defer close(l.done)
		for entry := range l.queue {
			db := persistence.ActiveDataSourceManager.GormDB(nil)
			if db == nil {
				continue
			}
			if err := db.Create(&entry).Error; err != nil {
				logrus.Debug("audit entry dropped: ", err)
			}
		}
	}()
	return func() {
		close(l.queue)
		<-l.done
	}
}

// Offer enqueues without blocking; entries are dropped when the queue
// is full.
func (l *Logger) Offer(entry AuditLog) {
	select {
	case l.queue <- entry:
	default:
		logrus.Debug("audit queue full, entry dropped")
	}
}

// Middleware observes completed responses and records one entry for each
// request that carried an authenticated identity.
func (l *Logger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		sec := session.ExtractSessionFromGinContext(c)
		if sec.Identity.ID.IsZero() {
			return
		}
		l.Offer(AuditLog{
			ID:         idgen.NextID(auditIdWorker),
			UserID:     sec.Identity.ID,
			Action:     c.FullPath(),
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			StatusCode: c.Writer.Status(),
			IP:         c.ClientIP(),
			Timestamp:  types.CurrentTimestamp(),
		})
	}
}
