package influxdb

import (
	// Go Internal Packages
	"context"
	"fmt"
	"time"

	// External Packages
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// Connect creates an InfluxDB client writing with millisecond precision and pings the server.
func Connect(ctx context.Context, url, token string) (influxdb2.Client, error) {
	opts := influxdb2.DefaultOptions().SetPrecision(time.Millisecond)
	client := influxdb2.NewClientWithOptions(url, token, opts)

	ok, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	if !ok {
		client.Close()
		return nil, fmt.Errorf("influxdb at %s is not ready", url)
	}
	return client, nil
}
