package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogger appends broker messages to the audit trail.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID         string    `bson:"_id"`
	Action     string    `bson:"action"`
	MessageID  string    `bson:"message_id"`
	Timestamp  time.Time `bson:"timestamp"`
	ReceivedAt time.Time `bson:"received_at"`
	Data       bson.M    `bson:"data"`
}

// LogMessage stores one message under action, its routing key. Messages are
// keyed by message id so redeliveries are stored once.
func (a *AuditLogger) LogMessage(ctx context.Context, action, messageID string, sentAt time.Time, data map[string]interface{}) error {
	id := messageID
	if id == "" {
		id = uuid.NewString()
	}
	log := AuditLog{
		ID:         id,
		Action:     action,
		MessageID:  messageID,
		Timestamp:  sentAt,
		ReceivedAt: time.Now(),
		Data:       bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

// Actions lists the stored audit entries for action, oldest first.
func (a *AuditLogger) Actions(ctx context.Context, action string) ([]AuditLog, error) {
	cur, err := a.coll.Find(ctx, bson.M{"action": action})
	if err != nil {
		return nil, err
	}
	var logs []AuditLog
	if err := cur.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
