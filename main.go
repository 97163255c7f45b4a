package main

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/go-sql-driver/mysql"

	"FleetGuard/AI"
	"FleetGuard/CronJobs"
	"FleetGuard/FiberConfig"
	"FleetGuard/Notifications"
	"FleetGuard/Storage"
	"FleetGuard/Workflow"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment as-is")
	}
	setupLogging()

	store, err := Storage.Connect(Storage.Config{
		LocalPath: os.Getenv("LOCAL_DB_PATH"),
		RemoteDSN: os.Getenv("REMOTE_DB_DSN"),
	})
	if err != nil {
		log.Fatal("Failed to open local storage:", err)
	}
	if err := store.Initialize(); err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	engine := Workflow.NewEngine(store)
	analyzer := AI.NewClient(os.Getenv("AI_SERVICE_URL"), os.Getenv("AI_API_KEY"))

	notifier, err := Notifications.Init(os.Getenv("FIREBASE_CREDENTIALS_FILE"), store.Local())
	if err != nil {
		log.Println("Push notifications disabled:", err)
		notifier = nil
	}

	if store.RemoteConfigured() {
		interval, _ := strconv.Atoi(os.Getenv("SYNC_INTERVAL_MINUTES"))
		scheduler := CronJobs.NewSyncScheduler(store, interval, true)
		if err := scheduler.Start(); err != nil {
			log.Println("Failed to start sync scheduler:", err)
		}
	}

	FiberConfig.FiberConfig(store, engine, analyzer, notifier)
}

func setupLogging() {
	// Create logs directory if it doesn't exist
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
		return
	}

	logFile, err := os.OpenFile("logs/application.log",
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime)
}
