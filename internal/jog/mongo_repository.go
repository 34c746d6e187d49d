package jog

import (
	"context"
	"errors"
	"time"

	"jogapp-api/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// mongoJogRepository implements JogRepository against a mongo collection
type mongoJogRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoJogRepository creates a new mongo-backed jog repository
func NewMongoJogRepository(collection *mongo.Collection, logger *zap.Logger) JogRepository {
	return &mongoJogRepository{
		collection: collection,
		logger:     logger,
	}
}

func (r *mongoJogRepository) Create(ctx context.Context, j *Jog) error {
	if _, err := r.collection.InsertOne(ctx, j); err != nil {
		return WrapRepositoryError(err, "create_jog")
	}
	return nil
}

func (r *mongoJogRepository) GetByID(ctx context.Context, jogID common.JogID) (*Jog, error) {
	var j Jog
	err := r.collection.FindOne(ctx, bson.M{"_id": jogID}).Decode(&j)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrJogNotFound
		}
		return nil, WrapRepositoryError(err, "get_jog")
	}
	return &j, nil
}

func (r *mongoJogRepository) Query(ctx context.Context, filter JogFilter) ([]*Jog, error) {
	query := buildQuery(filter)

	opts := options.Find()
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, WrapRepositoryError(err, "query_jogs")
	}
	defer cursor.Close(ctx)

	var jogs []*Jog
	if err := cursor.All(ctx, &jogs); err != nil {
		return nil, WrapRepositoryError(err, "decode_jogs")
	}
	return jogs, nil
}

func (r *mongoJogRepository) Update(ctx context.Context, j *Jog) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": j.ID}, j)
	if err != nil {
		return WrapRepositoryError(err, "update_jog")
	}
	if result.MatchedCount == 0 {
		return ErrJogNotFound
	}
	return nil
}

func (r *mongoJogRepository) BatchUpdate(ctx context.Context, updates []JogUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		set := bson.M{}
		for field, value := range u.Fields {
			set[field] = value
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.ID}).
			SetUpdate(bson.M{"$set": set}))
	}

	// Ordered bulk write in one driver call: a failure aborts the whole
	// batch so no sweep leaves a document half-applied.
	result, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return WrapRepositoryError(err, "batch_update")
	}

	r.logger.Debug("Batch update applied",
		zap.Int("requested", len(updates)),
		zap.Int64("matched", result.MatchedCount),
		zap.Int64("modified", result.ModifiedCount))
	return nil
}

func (r *mongoJogRepository) SoftDelete(ctx context.Context, jogID common.JogID, deletedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"deleted":     true,
			"timeDeleted": deletedAt,
			"updatedAt":   deletedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": jogID}, update)
	if err != nil {
		return WrapRepositoryError(err, "soft_delete")
	}
	if result.MatchedCount == 0 {
		return ErrJogNotFound
	}
	return nil
}

func (r *mongoJogRepository) Watch(ctx context.Context) (<-chan JogChange, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace"}},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, WrapRepositoryError(err, "watch_jogs")
	}

	changes := make(chan JogChange)
	go func() {
		defer close(changes)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var event struct {
				FullDocument Jog `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				r.logger.Warn("Failed to decode change stream event", zap.Error(err))
				continue
			}
			if event.FullDocument.ID == "" {
				continue
			}
			select {
			case changes <- JogChange{JogID: event.FullDocument.ID, UserID: event.FullDocument.UserID}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("Jog change stream ended with error", zap.Error(err))
		}
	}()

	return changes, nil
}

func buildQuery(filter JogFilter) bson.M {
	query := bson.M{}

	if filter.UserID != nil {
		query["userId"] = *filter.UserID
	}
	if filter.Status != nil {
		query["completeStatus"] = *filter.Status
	}
	if len(filter.Statuses) > 0 {
		query["completeStatus"] = bson.M{"$in": filter.Statuses}
	}
	if filter.Deleted != nil {
		query["deleted"] = *filter.Deleted
	}
	if filter.ReminderEnabled != nil {
		query["reminderEnabled"] = *filter.ReminderEnabled
	}

	dueRange := bson.M{}
	if filter.DueAfter != nil {
		dueRange["$gte"] = *filter.DueAfter
	}
	if filter.DueBefore != nil {
		dueRange["$lt"] = *filter.DueBefore
	}
	if len(dueRange) > 0 {
		query["dueDate"] = dueRange
	}

	return query
}
