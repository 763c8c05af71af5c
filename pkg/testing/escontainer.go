package testing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/wait"
)

const esImage = "docker.elastic.co/elasticsearch/elasticsearch:8.12.0"

// ESContainer is a single node Elasticsearch cluster reachable over plain HTTP.
type ESContainer struct {
	Container testcontainers.Container
	Address   string
}

// NewESContainer starts the cluster and terminates it when tb finishes.
func NewESContainer(ctx context.Context, tb testing.TB) *ESContainer {
	tb.Helper()

	container, err := startES(ctx)
	if err != nil {
		tb.Fatalf("failed to start elasticsearch container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container.Container); err != nil {
			tb.Logf("failed to terminate elasticsearch container: %v", err)
		}
	})

	return container
}

func startES(ctx context.Context) (*ESContainer, error) {
	c, err := elasticsearch.Run(ctx,
		esImage,
		elasticsearch.WithPassword(""),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_cluster/health").
				WithPort("9200").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("host: %w", err)
	}

	port, err := c.MappedPort(ctx, "9200")
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("mapped port: %w", err)
	}

	return &ESContainer{
		Container: c,
		Address:   fmt.Sprintf("http://%s:%s", host, port.Port()),
	}, nil
}
