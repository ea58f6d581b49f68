package main

import (
	"log"
	"net/http"

	"greenroom/bizerror"
	"greenroom/episode"
	"greenroom/es"
	"greenroom/event"
	"greenroom/flow"
	"greenroom/indices"
	"greenroom/infra/tracing"
	"greenroom/music"
	"greenroom/notification"
	"greenroom/persistence"
	"greenroom/program"
	"greenroom/servehttp"
	"greenroom/session"
	"greenroom/stats"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

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

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()

	if err := flow.Migrate(ds.GormDB()); err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}
	if err := ds.GormDB().AutoMigrate(&session.User{}, &event.EventRecord{}).Error; err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}
	if err := flow.SeedDefaultWorkflows(ds); err != nil {
		log.Fatalf("workflow seeding failed %v\n", err)
	}

	if err := es.InitESClient(); err != nil {
		log.Fatalf("elasticsearch client init failed %v\n", err)
	}

	tracerCloser, err := tracing.InitTracer()
	if err != nil {
		log.Fatalf("tracer init failed %v\n", err)
	}
	defer tracerCloser.Close()

	registry := flow.NewStateRegistry(ds)
	executor := flow.NewTransitionExecutor(ds, registry)

	notification.NewDispatcher(ds).Register()
	event.EventHandlers = append(event.EventHandlers, indices.EntityIndexEventHandler)

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "greenroom")
	})

	session.RegisterSessionsHandler(engine, ds)

	auth := session.SimpleAuthFilter()
	servehttp.RegisterTransitionHandler(engine, executor, auth)
	servehttp.RegisterWorkflowRulesHandler(engine, registry, auth)
	servehttp.RegisterHistoryHandler(engine, ds, auth)
	program.RegisterProgramsRestAPI(engine, program.NewProgramManager(ds, registry, executor), auth)
	episode.RegisterEpisodesRestAPI(engine, episode.NewEpisodeManager(ds, registry, executor), auth)
	music.RegisterSubmissionsRestAPI(engine, music.NewSubmissionManager(ds, registry, executor), auth)
	notification.RegisterNotificationsRestAPI(engine, notification.NewNotificationManager(ds), auth)
	stats.RegisterStatsRestAPI(engine, stats.NewStatsManager(ds), auth)
	indices.RegisterIndicesRestAPI(engine, ds, auth)

	servehttp.StartHTTPServer(engine)
}
