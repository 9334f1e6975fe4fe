package blob

import (
	"context"
	"fmt"
)

// Config selects and configures a backend
type Config struct {
	Driver Driver
	Dir    string
	S3     S3Config
}

// Open returns the Store named by cfg.Driver (filesystem when empty).
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.Dir)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
