package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Client wraps a Neo4j driver with its target database. It is created once
// at startup, verified, and shared by everything that talks to the graph.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
}

// NewClientParams configures the Neo4j connection.
type NewClientParams struct {
	URI      string
	Username string
	Password string
	Database string

	Timeout     time.Duration
	MaxPoolSize int
}

// NewClient connects to Neo4j and verifies connectivity before returning.
func NewClient(ctx context.Context, params NewClientParams) (*Client, error) {
	if params.URI == "" {
		return nil, fmt.Errorf("neo4j uri is required")
	}

	username := params.Username
	if username == "" {
		username = "neo4j"
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	maxPool := params.MaxPoolSize
	if maxPool <= 0 {
		maxPool = 50
	}

	auth := neo4j.BasicAuth(username, params.Password, "")
	driver, err := neo4j.NewDriverWithContext(params.URI, auth, func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = maxPool
		cfg.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify neo4j connectivity: %w", err)
	}

	return &Client{
		Driver:   driver,
		Database: params.Database,
	}, nil
}

// Close shuts down the driver and its connection pool.
func (c *Client) Close(ctx context.Context) error {
	return c.Driver.Close(ctx)
}

func (c *Client) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.Database,
	})
}
