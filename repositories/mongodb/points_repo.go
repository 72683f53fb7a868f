package mongodb

import (
	// Go Internal Packages
	"context"
	"errors"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// namespaceExists is returned by create when the collection is already there.
const namespaceExists = 48

// PointsRepository persists fraud points into a MongoDB time-series collection.
type PointsRepository struct {
	uri        string
	database   string
	collection string

	client *mongo.Client
}

func NewPointsRepository(uri, database, collection string) *PointsRepository {
	return &PointsRepository{uri: uri, database: database, collection: collection}
}

func (r *PointsRepository) Name() string { return "mongodb" }

// Open connects and makes sure the time-series collection exists.
func (r *PointsRepository) Open(ctx context.Context) error {
	client, err := Connect(ctx, r.uri)
	if err != nil {
		return err
	}
	if err = r.attach(ctx, client); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}
	return nil
}

func (r *PointsRepository) attach(ctx context.Context, client *mongo.Client) error {
	tsOpts := options.TimeSeries().
		SetTimeField("timestamp").
		SetMetaField("userId").
		SetGranularity("seconds")

	db := client.Database(r.database)
	err := db.CreateCollection(ctx, r.collection, options.CreateCollection().SetTimeSeriesOptions(tsOpts))
	var ce mongo.CommandError
	if err != nil && !(errors.As(err, &ce) && ce.Code == namespaceExists) {
		return err
	}

	r.client = client
	return nil
}

// WritePoint inserts a single point.
func (r *PointsRepository) WritePoint(ctx context.Context, dp models.DataPoint) error {
	collection := r.client.Database(r.database).Collection(r.collection)
	_, err := collection.InsertOne(ctx, models.ToMongoDataPoint(dp))
	return err
}

// Close disconnects. An expired ctx closes in-use connections immediately.
func (r *PointsRepository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}
