package index

import (
	"log/slog"
	"path"
	"strings"

	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/collection"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
	"github.com/starford/quire/internal/storage"
)

// Sync walks the content root and brings the catalog up to date:
//   - new/changed entries are parsed and upserted
//   - entries removed from disk are deleted from the catalog
//
// Files outside every collection directory are ignored.
func Sync(db *DB, store storage.Provider, layout *collection.Layout, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if _, ok := layout.KindOf(m.Path); !ok {
			continue
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, layout, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteEntry(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses data and upserts it into the catalog under the
// collection that owns rel.
func indexFile(db *DB, layout *collection.Layout, rel string, data []byte) error {
	kind, ok := layout.KindOf(rel)
	if !ok {
		return nil
	}
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	e := models.Entry{
		Path:        rel,
		Collection:  kind.String(),
		Slug:        slugOf(rel),
		Title:       res.Title,
		Description: res.String("description"),
		Draft:       res.Draft(),
		Tags:        res.Tags,
		Checksum:    checksum.Sum(data),
	}
	if d, ok := res.Date(); ok {
		e.Date = d
	}
	return db.UpsertEntry(e, res.Body)
}

// slugOf returns the file name of rel without its extension.
func slugOf(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}

// refresh indexes data unless the catalog already holds it at the same
// checksum. It reports whether the catalog changed.
func refresh(db *DB, layout *collection.Layout, rel string, data []byte) (bool, error) {
	stored, err := db.GetChecksum(rel)
	if err != nil {
		return false, err
	}
	if checksum.Matches(data, stored) {
		return false, nil
	}
	if err := indexFile(db, layout, rel, data); err != nil {
		return false, err
	}
	return true, nil
}

// IndexPath reads one file from the store and upserts it when its content
// changed. Paths outside every collection are ignored.
func IndexPath(db *DB, store storage.Provider, layout *collection.Layout, rel string) error {
	data, err := store.Read(rel)
	if err != nil {
		return err
	}
	_, err = refresh(db, layout, rel, data)
	return err
}
