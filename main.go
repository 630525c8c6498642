package main

import (
	"assetflow/account"
	"assetflow/bizerror"
	"assetflow/common"
	"assetflow/domain"
	"assetflow/domain/approval"
	"assetflow/domain/asset"
	"assetflow/domain/maintenance"
	"assetflow/domain/scrap"
	"assetflow/domain/vendor"
	"assetflow/es"
	"assetflow/indices"
	"assetflow/infra/tracing"
	"assetflow/persistence"
	"assetflow/servehttp"
	"assetflow/session"
	"assetflow/sessions"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infoln("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition on multi-instance rollout)
	db := ds.GormDB(context.Background())
	err = db.AutoMigrate(
		&account.User{}, &account.Org{}, &account.OrgMember{},
		&domain.SequenceStep{}, &domain.WorkflowHeader{}, &domain.WorkflowDetail{}, &domain.HistoryRecord{},
		&asset.Asset{}, &vendor.Vendor{},
		&maintenance.MaintenanceSchedule{}, &scrap.ScrapLot{},
	).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}
	if err := account.EnsureAdminUser(db); err != nil {
		logrus.Fatalf("bootstrap admin account failed %v", err)
	}

	tracingCloser, err := tracing.StartTracing(common.GetServiceName())
	if err != nil {
		logrus.Warnf("tracing is disabled: %v", err)
	} else {
		defer tracingCloser.Close()
	}

	if err := es.CreateClientFromEnv(); err != nil {
		logrus.Fatalf("failed to create elasticsearch client %v", err)
	}

	approval.RegisterTerminalHandler(maintenance.WorkflowTerminalHandler)
	approval.RegisterTerminalHandler(scrap.WorkflowTerminalHandler)
	approval.RegisterTerminalHandler(indices.WorkflowIndexTerminalHandler)

	engine := gin.New()
	engine.Use(gin.Recovery(), bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "assetflow")
	})

	sessions.RegisterSessionsRestAPI(engine)
	account.RegisterAccountsRestAPI(engine, session.SimpleAuthFilter())
	servehttp.RegisterSequenceTemplateHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterWorkflowHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterWorkflowSearchHandler(engine, session.SimpleAuthFilter())
	asset.RegisterAssetsRestAPI(engine, session.SimpleAuthFilter())
	vendor.RegisterVendorsRestAPI(engine, session.SimpleAuthFilter())
	maintenance.RegisterSchedulesRestAPI(engine, session.SimpleAuthFilter())
	scrap.RegisterScrapLotsRestAPI(engine, session.SimpleAuthFilter())
	indices.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}
