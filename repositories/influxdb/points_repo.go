package influxdb

import (
	// Go Internal Packages
	"context"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// PointsRepository persists fraud points into an InfluxDB bucket.
type PointsRepository struct {
	url    string
	token  string
	org    string
	bucket string

	client influxdb2.Client
	writer api.WriteAPIBlocking
}

func NewPointsRepository(url, token, org, bucket string) *PointsRepository {
	return &PointsRepository{url: url, token: token, org: org, bucket: bucket}
}

func (r *PointsRepository) Name() string { return "influxdb" }

// Open connects to the server. The client is shared by every partition worker.
func (r *PointsRepository) Open(ctx context.Context) error {
	client, err := Connect(ctx, r.url, r.token)
	if err != nil {
		return err
	}
	r.client = client
	r.writer = client.WriteAPIBlocking(r.org, r.bucket)
	return nil
}

// WritePoint writes dp and blocks until the server acknowledges it.
func (r *PointsRepository) WritePoint(ctx context.Context, dp models.DataPoint) error {
	p := influxdb2.NewPoint(
		dp.Measurement,
		map[string]string{"userId": dp.UserID},
		map[string]interface{}{"amount": dp.Amount},
		dp.Timestamp,
	)
	return r.writer.WritePoint(ctx, p)
}

// Close releases the client. The blocking write API holds no buffered points.
func (r *PointsRepository) Close(_ context.Context) error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
