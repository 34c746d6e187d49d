package stats

import (
	"context"
	"time"

	"jogapp-api/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// mongoStatsRepository implements StatsRepository against a mongo collection
type mongoStatsRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
	clock      common.Clock
}

// NewMongoStatsRepository creates a new mongo-backed stats repository
func NewMongoStatsRepository(collection *mongo.Collection, clock common.Clock, logger *zap.Logger) StatsRepository {
	return &mongoStatsRepository{
		collection: collection,
		logger:     logger,
		clock:      clock,
	}
}

func (r *mongoStatsRepository) GetOrInit(ctx context.Context, userID common.UserID) (*UserStats, error) {
	fresh := NewUserStats(userID, r.clock.Now())

	// Upsert with $setOnInsert: lazy creation is never an error and racing
	// initialisers converge on one document.
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stats UserStats
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$setOnInsert": fresh},
		opts,
	).Decode(&stats)
	if err != nil {
		return nil, WrapStatsRepositoryError(err, "get_or_init")
	}
	return &stats, nil
}

func (r *mongoStatsRepository) IncrementPath(ctx context.Context, userID common.UserID, path string, delta int64) error {
	return r.IncrementPaths(ctx, userID, map[string]int64{path: delta})
}

func (r *mongoStatsRepository) IncrementPaths(ctx context.Context, userID common.UserID, increments map[string]int64) error {
	if len(increments) == 0 {
		return nil
	}

	inc := bson.M{}
	for path, delta := range increments {
		if delta != 0 {
			inc[path] = delta
		}
	}
	if len(inc) == 0 {
		return nil
	}

	update := bson.M{
		"$inc": inc,
		"$set": bson.M{"updatedAt": r.clock.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return WrapStatsRepositoryError(err, "increment_paths")
	}
	return nil
}

func (r *mongoStatsRepository) Merge(ctx context.Context, userID common.UserID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	set := bson.M{"updatedAt": r.clock.Now()}
	for path, value := range fields {
		set[path] = value
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set}, options.Update().SetUpsert(true))
	if err != nil {
		return WrapStatsRepositoryError(err, "merge")
	}
	return nil
}

func (r *mongoStatsRepository) ListQuestionnaireCandidates(ctx context.Context) ([]*UserStats, error) {
	filter := bson.M{
		"symptomStats.questionnaireTimeSet": true,
		"symptomStats.questionnaireReady":   false,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, WrapStatsRepositoryError(err, "list_questionnaire_candidates")
	}
	defer cursor.Close(ctx)

	var users []*UserStats
	if err := cursor.All(ctx, &users); err != nil {
		return nil, WrapStatsRepositoryError(err, "decode_questionnaire_candidates")
	}
	return users, nil
}

func (r *mongoStatsRepository) ResetQuestionnaireReady(ctx context.Context) error {
	start := time.Now()
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"symptomStats.questionnaireReady": true},
		bson.M{"$set": bson.M{"symptomStats.questionnaireReady": false}},
	)
	if err != nil {
		return WrapStatsRepositoryError(err, "reset_questionnaire_ready")
	}

	r.logger.Debug("Questionnaire ready flags reset",
		zap.Int64("modified", result.ModifiedCount),
		zap.Duration("duration", time.Since(start)))
	return nil
}
