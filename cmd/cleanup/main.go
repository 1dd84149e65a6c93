// Command cleanup purges availability windows older than the configured
// retention horizon. It is meant to be run periodically by cron.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"clinic-booking/internal/configs"
	"clinic-booking/internal/database"
	"clinic-booking/internal/logging"
	"clinic-booking/internal/scheduling"
)

var configPath = flag.String("config", "", "Config file path")

func main() {
	flag.Parse()
	if *configPath == "" {
		log.Fatal("no config file path was given")
	}
	config, err := configs.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	dbConn, err := database.NewConnection(config)
	if err != nil {
		log.Fatal(err)
	}
	defer dbConn.Close()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	service := scheduling.NewService(config, dbConn, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	purged, err := service.PurgeOldSchedules(ctx)
	if err != nil {
		logger.Fatal(err)
	}
	logging.PrintlnInfo(logger, fmt.Sprint(purged, " schedule windows purged"))
}
