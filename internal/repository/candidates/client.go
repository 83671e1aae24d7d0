package candidates

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// ClientConfig holds connection parameters for the listing index.
type ClientConfig struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// NewClient creates a rueidis client tuned for FT.SEARCH result parsing.
func NewClient(cfg ClientConfig) (rueidis.Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// Ping checks connectivity.
func Ping(ctx context.Context, client rueidis.Client) error {
	cmd := client.B().Ping().Build()
	if err := client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the index responds or the timeout expires.
func WaitForReady(ctx context.Context, client rueidis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for index: %w", ctx.Err())
		case <-ticker.C:
			if err := Ping(ctx, client); err == nil {
				return nil
			}
		}
	}
}
