package Notifications

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"FleetGuard/Models"
)

// Notifier pushes report alerts to registered devices via FCM. A nil
// Notifier is valid and does nothing, so callers never need to guard on
// whether push is configured.
type Notifier struct {
	client *messaging.Client
	db     *gorm.DB
}

// Init sets up the Firebase messaging client from a service account file.
// An empty path means push is not configured and Init returns nil, nil.
func Init(credentialsFile string, db *gorm.DB) (*Notifier, error) {
	if credentialsFile == "" {
		return nil, nil
	}
	ctx := context.Background()
	opt := option.WithCredentialsFile(credentialsFile)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Messaging client: %w", err)
	}
	log.Println("Firebase initialized successfully")
	return &Notifier{client: client, db: db}, nil
}

// NotifyNewReport pushes an alert for a freshly filed HIGH or CRITICAL
// report to every registered device. Best effort: failures are logged per
// token and never bubble up to the report flow.
func (n *Notifier) NotifyNewReport(report Models.DamageReport, unit Models.Unit) {
	if n == nil || n.client == nil {
		return
	}
	if report.Priority != Models.PriorityHigh && report.Priority != Models.PriorityCritical {
		return
	}

	var tokens []Models.FCMToken
	if err := n.db.Find(&tokens).Error; err != nil {
		log.Printf("Failed to load device tokens: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title := fmt.Sprintf("%s damage report: %s", report.Priority, unit.Name)
	body := report.Description
	if len(body) > 120 {
		body = body[:117] + "..."
	}

	ctx := context.Background()
	for _, token := range tokens {
		message := &messaging.Message{
			Token: token.Value,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: map[string]string{
				"reportId": report.ID,
				"unitId":   report.UnitID,
				"priority": string(report.Priority),
			},
		}
		if _, err := n.client.Send(ctx, message); err != nil {
			log.Printf("Error sending notification to device %d: %v", token.ID, err)
			continue
		}
	}
	log.Printf("Notification sent for report %s (unit %s)", report.ID, unit.ID)
}

// RegisterToken stores a device token, ignoring duplicates. Tokens are
// accepted even when push is not configured so they are ready once it is.
func RegisterToken(db *gorm.DB, value string) error {
	var token Models.FCMToken
	return db.Where(Models.FCMToken{Value: value}).FirstOrCreate(&token).Error
}
