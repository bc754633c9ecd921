package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/dynagrid/internal/docstore"
	"github.com/vk/dynagrid/internal/docstore/filestore"
	"github.com/vk/dynagrid/internal/docstore/mongostore"
	"github.com/vk/dynagrid/internal/docstore/objectstore"
	"github.com/vk/dynagrid/internal/docstore/redisstore"
)

var storeSchemes = []string{"mongodb", "mongodb+srv", "redis", "rediss", "s3", "file"}

func storeScheme(uri string) (string, error) {
	scheme, _, ok := strings.Cut(uri, "://")
	if ok {
		for _, s := range storeSchemes {
			if s == scheme {
				return scheme, nil
			}
		}
	}
	return "", fmt.Errorf("invalid store-uri %q: scheme must be one of %s", uri, strings.Join(storeSchemes, ", "))
}

func noClose(context.Context) error { return nil }

// openStore connects to the store named by the configured URI. The returned
// function releases the connection.
func openStore(ctx context.Context, cfg *Config) (docstore.Store, func(context.Context) error, error) {
	scheme, err := storeScheme(cfg.StoreURI)
	if err != nil {
		return nil, nil, err
	}
	switch scheme {
	case "mongodb", "mongodb+srv":
		s, closeFn, err := mongostore.Connect(ctx, cfg.StoreURI, cfg.StoreDatabase)
		if err != nil {
			return nil, nil, err
		}
		return s, closeFn, nil
	case "redis", "rediss":
		s, closeFn, err := redisstore.Connect(ctx, cfg.StoreURI)
		if err != nil {
			return nil, nil, err
		}
		return s, closeFn, nil
	case "s3":
		loc, err := objectstore.ParseURI(cfg.StoreURI)
		if err != nil {
			return nil, nil, err
		}
		s, err := objectstore.Connect(ctx, loc)
		if err != nil {
			return nil, nil, err
		}
		return s, noClose, nil
	default:
		return filestore.New(strings.TrimPrefix(cfg.StoreURI, "file://")), noClose, nil
	}
}
