// Command reminders notifies every confirmed appointment scheduled for tomorrow.
// It is meant to be run once a day by cron.
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
var referenceDate = flag.String("date", "", "Reference date, e.g. 2025-06-02 (defaults to today)")

func main() {
	flag.Parse()
	if *configPath == "" {
		log.Fatal("no config file path was given")
	}
	config, err := configs.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	var reference time.Time
	if *referenceDate != "" {
		reference, err = time.Parse("2006-01-02", *referenceDate)
		if err != nil {
			log.Fatal(err)
		}
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

	sent, err := service.SendDailyReminders(ctx, reference)
	if err != nil {
		logger.Fatal(err)
	}
	logging.PrintlnInfo(logger, fmt.Sprint(sent, " reminders sent"))
}
