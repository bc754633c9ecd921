package app

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/vk/dynagrid/internal/ctxlog"
	"github.com/vk/dynagrid/internal/docstore"
	"github.com/vk/dynagrid/internal/docstore/filestore"
	"github.com/vk/dynagrid/internal/fsutil"
	"github.com/vk/dynagrid/internal/system"
)

// Run loads every configured document, prints a report per document and
// copies the documents into the configured store, if any.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "paths", a.config.Paths)

	sources, err := discover(a.config.Paths)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		a.logger.Warn("No documents found.", "paths", a.config.Paths)
		return nil
	}
	a.logger.Info("Documents discovered.", "count", len(sources), "workers", a.config.WorkerCount)

	keys := make([]string, len(sources))
	names := make([]string, len(sources))
	for i, src := range sources {
		keys[i], names[i] = src.Key, src.Name
	}

	docs, err := docstore.OpenAll(ctx, filestore.New(""), keys, a.config.WorkerCount)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	for i, name := range names {
		report := summarize(name, docs[i])
		report.write(a.outW)
		for _, issue := range report.issues {
			a.logger.Warn("Connectivity issue.", "document", name, "issue", issue)
		}
	}

	if a.config.StoreURI != "" {
		if err := a.copyToStore(ctx, names, docs); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// source is one discovered document. Key addresses it in an unrooted
// filestore; Name is its key relative to the search root it was found
// under, used when copying into another store.
type source struct {
	Key  string
	Name string
}

func discover(paths []string) ([]source, error) {
	matches, err := fsutil.FindAll(paths, filestore.Ext)
	if err != nil {
		return nil, err
	}
	out := make([]source, 0, len(matches))
	for _, m := range matches {
		if filepath.Ext(m.Path) != filestore.Ext {
			return nil, fmt.Errorf("%s is not an %s document", m.Path, filestore.Ext)
		}
		out = append(out, source{Key: filestore.KeyOf(m.Path), Name: filestore.KeyOf(m.Rel())})
	}
	return out, nil
}

func (a *App) copyToStore(ctx context.Context, keys []string, docs []*system.Document) error {
	store, disconnect, err := openStore(ctx, a.config)
	if err != nil {
		return err
	}
	defer func() {
		if err := disconnect(context.WithoutCancel(ctx)); err != nil {
			a.logger.Error("Store disconnect failed.", "error", err)
		}
	}()

	if err := docstore.Copy(ctx, store, keys, docs); err != nil {
		return fmt.Errorf("failed to copy documents: %w", err)
	}
	a.logger.Info("Documents copied.", "count", len(docs), "store", redact(a.config.StoreURI))
	return nil
}

// redact hides credentials embedded in a store URI.
func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "(unparsable)"
	}
	return u.Redacted()
}
