package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/robertarktes/sponsored-events/internal/outcome"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OutcomeSink persists outcome log entries, one document per entry keyed
// by run and sequence number.
type OutcomeSink struct {
	coll   *mongo.Collection
	runID  string
	logger observability.Logger
}

func NewOutcomeSink(db *mongo.Database, runID string, logger observability.Logger) *OutcomeSink {
	return &OutcomeSink{
		coll:   db.Collection("outcomes"),
		runID:  runID,
		logger: logger,
	}
}

type OutcomeDoc struct {
	RunID  string    `bson:"run_id"`
	Seq    int64     `bson:"seq"`
	Source string    `bson:"source"`
	Code   string    `bson:"code"`
	Fields bson.M    `bson:"fields,omitempty"`
	At     time.Time `bson:"at"`
}

// Write upserts so that a retried entry does not duplicate.
func (s *OutcomeSink) Write(ctx context.Context, e outcome.Entry) error {
	doc := OutcomeDoc{
		RunID:  s.runID,
		Seq:    e.Seq,
		Source: e.Source,
		Code:   e.Code,
		Fields: fieldsDoc(e.Fields),
		At:     e.At,
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"run_id": s.runID, "seq": e.Seq},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		s.logger.WithField("seq", e.Seq).Error("failed to store outcome", err)
		return err
	}
	return nil
}

// Find returns the stored entries of source for this run in sequence order.
func (s *OutcomeSink) Find(ctx context.Context, source string) ([]OutcomeDoc, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"run_id": s.runID, "source": source},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []OutcomeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func fieldsDoc(fields map[string]any) bson.M {
	if len(fields) == 0 {
		return nil
	}
	doc := make(bson.M, len(fields))
	for k, v := range fields {
		switch v := v.(type) {
		case time.Time:
			doc[k] = v
		case fmt.Stringer:
			doc[k] = v.String()
		default:
			doc[k] = v
		}
	}
	return doc
}
