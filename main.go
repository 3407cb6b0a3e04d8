package main

import (
	"log"
	"net/http"

	"worksite/account"
	"worksite/audit"
	"worksite/bizerror"
	"worksite/client/es"
	"worksite/common"
	"worksite/domain"
	"worksite/event"
	"worksite/indices"
	"worksite/infra/tracing"
	"worksite/invoice"
	"worksite/milestone"
	"worksite/nonconformity"
	"worksite/notification"
	"worksite/persistence"
	"worksite/plan"
	"worksite/project"
	"worksite/rooms"
	"worksite/servehttp"
	"worksite/session"
	"worksite/sessions"
	"worksite/stock"
	"worksite/tool"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	tracingCloser, err := tracing.InitTracerFromEnv(common.GetServiceName())
	if err != nil {
		log.Fatalf("tracer init failed %v\n", err)
	}
	defer tracingCloser.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&account.User{},
		&domain.Project{}, &domain.ProjectMember{},
		&domain.Plan{}, &domain.PlanVersion{},
		&domain.NonConformity{}, &domain.NcHistory{},
		&domain.StockItem{},
		&domain.Tool{}, &domain.ToolAssignment{}, &domain.ToolMaintenance{},
		&domain.Milestone{}, &domain.Invoice{},
		&event.EventRecord{}, &notification.Notification{}, &audit.AuditLog{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	es.CreateClientFromEnv()

	rooms.ActiveBroadcaster = rooms.NewBroadcaster()
	event.EventHandlers = []event.EventHandler{
		rooms.ActiveBroadcaster.AsEventHandler(),
		notification.AsEventHandler(rooms.ActiveBroadcaster),
		indices.AsEventHandler(),
	}

	audit.ActiveAuditLogger = audit.NewLogger(1024)
	stopAudit := audit.ActiveAuditLogger.Start()
	defer stopAudit()

	engine := gin.New()
	engine.Use(gin.Logger(), audit.ActiveAuditLogger.Middleware(), bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "worksite")
	})

	sessions.RegisterSessionsHandler(engine)
	account.RegisterUsersHandler(engine, session.SimpleAuthFilter())

	project.RegisterProjectsHandler(engine, session.SimpleAuthFilter())
	plan.RegisterPlansHandler(engine, session.SimpleAuthFilter())
	nonconformity.RegisterNonConformitiesHandler(engine, session.SimpleAuthFilter())
	stock.RegisterStocksHandler(engine, session.SimpleAuthFilter())
	tool.RegisterToolsHandler(engine, session.SimpleAuthFilter())
	milestone.RegisterMilestonesHandler(engine, session.SimpleAuthFilter())
	invoice.RegisterInvoicesHandler(engine, session.SimpleAuthFilter())
	notification.RegisterNotificationsHandler(engine, session.SimpleAuthFilter())
	indices.RegisterNcSearchHandler(engine, session.SimpleAuthFilter())
	rooms.RegisterRealtimeHandler(engine, rooms.ActiveBroadcaster, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}
