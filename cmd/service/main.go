package main

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"gitlab.com/matteo.albano/rubrica-service/internal/api"
	"gitlab.com/matteo.albano/rubrica-service/internal/config"
	"gitlab.com/matteo.albano/rubrica-service/internal/logger"
	"gitlab.com/matteo.albano/rubrica-service/internal/service"
	"gitlab.com/matteo.albano/rubrica-service/internal/store"
	"gitlab.com/matteo.albano/rubrica-service/internal/web"
)

// Usage example on the command line:
// > PORT=8080 DBUSER=rubrica DBPWD=segreto DBHOST=localhost:3306 go run main.go
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	sqlDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Fatal("apertura database fallita", "err", err)
	}

	contattoStore, err := store.NewSQL(sqlDB)
	if err != nil {
		log.Fatal("preparazione statement fallita", "err", err)
	}
	contatti := service.New(contattoStore, log)

	router := api.NewEngine(cfg.GinLogging)
	api.NewHandler(contatti, log).Register(router)
	web.NewHandler(contatti, log).Register(router, "web/templates/*.html")

	log.Info("rubrica-service in ascolto", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("server terminato", "err", err)
	}
}
