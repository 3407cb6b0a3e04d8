package audit_test

import (
	"net/http"
	"testing"
	"time"

	"worksite/audit"
	"worksite/domain"
	"worksite/persistence"
	"worksite/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *testinfra.TestDatabase {
	db := testinfra.StartMysqlTestDatabase("worksite")
	require.NoError(t, db.DS.GormDB(nil).AutoMigrate(&audit.AuditLog{}).Error)
	persistence.ActiveDataSourceManager = db.DS
	return db
}

func TestAuditLogger(t *testing.T) {
	db := setup(t)
	defer testinfra.StopMysqlTestDatabase(db)

	t.Run("offered entries end up in the store", func(t *testing.T) {
		logger := audit.NewLogger(16)
		stop := logger.Start()

		logger.Offer(audit.AuditLog{ID: 1, UserID: 10, Action: "/v1/projects",
			Method: "POST", Path: "/v1/projects", StatusCode: 201, IP: "127.0.0.1",
			Timestamp: types.CurrentTimestamp()})
		stop() // drains the queue

		var entries []audit.AuditLog
		require.NoError(t, persistence.ActiveDataSourceManager.GormDB(nil).Find(&entries).Error)
		require.Len(t, entries, 1)
		assert.Equal(t, types.ID(10), entries[0].UserID)
		assert.Equal(t, "POST", entries[0].Method)
		assert.Equal(t, 201, entries[0].StatusCode)
	})

	t.Run("a full queue drops entries instead of blocking", func(t *testing.T) {
		logger := audit.NewLogger(1)
		// worker not started, queue holds one entry
		done := make(chan struct{})
		go func() {
			defer close(done)
			logger.Offer(audit.AuditLog{ID: 2})
			logger.Offer(audit.AuditLog{ID: 3})
			logger.Offer(audit.AuditLog{ID: 4})
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Offer blocked on a full queue")
		}
	})
}

func TestAuditMiddleware(t *testing.T) {
	db := setup(t)
	defer testinfra.StopMysqlTestDatabase(db)

	logger := audit.NewLogger(16)
	stop := logger.Start()

	router := gin.New()
	router.Use(logger.Middleware(), testinfra.SessionMiddleware(
		testinfra.BuildSession(10, "pm", domain.GlobalRoleProjectManager)))
	router.GET("/v1/projects/:projectId", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	anonymous := gin.New()
	anonymous.Use(logger.Middleware())
	anonymous.GET("/v1/projects/:projectId", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("authenticated requests leave one entry", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/v1/projects/100", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		require.Equal(t, http.StatusOK, status)

		req, _ = http.NewRequest(http.MethodGet, "/v1/projects/100", nil)
		status, _, _ = testinfra.ExecuteRequest(req, anonymous)
		require.Equal(t, http.StatusOK, status)

		stop()

		var entries []audit.AuditLog
		require.NoError(t, persistence.ActiveDataSourceManager.GormDB(nil).Find(&entries).Error)
		require.Len(t, entries, 1)
		assert.Equal(t, types.ID(10), entries[0].UserID)
		assert.Equal(t, "/v1/projects/:projectId", entries[0].Action)
		assert.Equal(t, "/v1/projects/100", entries[0].Path)
	})
}
