package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	alertserrors "officehub/internal/alerts/errors"
	"officehub/pkg/config"
	mongodb "officehub/pkg/db/mongo"
	"officehub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Alerts"
)

type AlertRepository interface {
	// FindVisible returns alerts that have not expired at now, newest first.
	// A non-empty audience other than "all" limits the result to alerts
	// addressed to that audience or to everyone.
	FindVisible(ctx context.Context, audience string, now time.Time) ([]*model.Alert, error)
	FindByID(ctx context.Context, id string) (*model.Alert, error)
	Create(ctx context.Context, alert *model.Alert) error
	Replace(ctx context.Context, alert *model.Alert) error
	Delete(ctx context.Context, id string) error
}

type mongoAlertRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAlertRepository(cfg *config.Config) AlertRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAlertRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func visibleFilter(audience string, now time.Time) bson.M {
	clauses := bson.A{
		bson.M{"$or": bson.A{
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gt": now}},
		}},
	}
	if audience != "" && audience != model.AudienceAll {
		clauses = append(clauses, bson.M{"target_audience": bson.M{"$in": bson.A{audience, model.AudienceAll}}})
	}
	return bson.M{"$and": clauses}
}

func (r *mongoAlertRepository) FindVisible(ctx context.Context, audience string, now time.Time) ([]*model.Alert, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, visibleFilter(audience, now), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find alerts: %w", err)
	}
	defer cursor.Close(ctx)

	alerts := []*model.Alert{}
	if err = cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}
	for _, a := range alerts {
		toUTC(a)
	}
	return alerts, nil
}

func (r *mongoAlertRepository) FindByID(ctx context.Context, id string) (*model.Alert, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var alert model.Alert
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&alert); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, alertserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find alert: %w", err)
	}
	toUTC(&alert)
	return &alert, nil
}

func (r *mongoAlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, alert); err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *mongoAlertRepository) Replace(ctx context.Context, alert *model.Alert) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": alert.ID}, alert)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if result.MatchedCount == 0 {
		return alertserrors.ErrNotFound
	}
	return nil
}

func (r *mongoAlertRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if result.DeletedCount == 0 {
		return alertserrors.ErrNotFound
	}
	return nil
}

func toUTC(a *model.Alert) {
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	if a.ExpiresAt != nil {
		t := a.ExpiresAt.UTC()
		a.ExpiresAt = &t
	}
}
