package cloudsync

import (
	"context"
	"encoding/json"
	"path"
	"sync"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/shayanh/retitle/pipeline"
)

// DropboxSynchronizer proposes titles for the PDFs of a Dropbox folder.
// Files handled once are remembered and not downloaded again.
type DropboxSynchronizer struct {
	dh        DropboxAPI
	proc      *pipeline.Processor
	state     State
	catalog   Cataloger
	outFolder string
	log       *logrus.Logger
	lock      sync.Mutex
}

// NewDropboxSynchronizer creates a synchronizer. catalog may be nil. When
// outFolder is empty no copies are made and results are only reported.
func NewDropboxSynchronizer(dh DropboxAPI, proc *pipeline.Processor, state State, catalog Cataloger, outFolder string, log *logrus.Logger) *DropboxSynchronizer {
	return &DropboxSynchronizer{
		dh:        dh,
		proc:      proc,
		state:     state,
		catalog:   catalog,
		outFolder: outFolder,
		log:       log,
	}
}

func (ds *DropboxSynchronizer) getCursorKey(path string) string {
	return "cursor-dropbox-" + path
}

// SyncFolder handles the entries of path changed since the last successful
// sync. The returned results follow the listing order. The cursor only moves
// forward when every file succeeded or was skipped.
func (ds *DropboxSynchronizer) SyncFolder(ctx context.Context, path string) ([]pipeline.Result, error) {
	ds.lock.Lock()
	defer ds.lock.Unlock()

	var cursor string
	key := ds.getCursorKey(path)
	if val, err := ds.state.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		if err != nil {
			return nil, errors.Wrap(err, "dropbox SyncFolder failed")
		}
		cursor = val
		ds.log.WithFields(logrus.Fields{
			"Path":   path,
			"Cursor": cursor,
		}).Info("Cursor has been retrieved.")
	}

	entries, newCursor, err := ds.dh.ListFolder(path, cursor)
	if err != nil {
		if err := ds.state.Del(ctx, key); err != nil {
			ds.log.WithError(err).Error("cannot delete dropbox cursor")
		} else {
			ds.log.WithFields(logrus.Fields{
				"Path":   path,
				"Cursor": cursor,
			}).Info("Cursor has been deleted.")
		}
		return nil, errors.Wrap(err, "dropbox SyncFolder failed")
	}

	var inputs []pipeline.File
	var metas []*files.FileMetadata
	var errs error
	for _, entry := range entries {
		switch v := entry.(type) {
		case *files.FileMetadata:
			c := CloudFile{FileID: v.Id, Provider: providerDropbox}
			if val, err := ds.state.Get(ctx, c.GetKey()); err == nil {
				h := decodeHandled(val)
				if h.CatalogPending {
					if err := ds.catalogFile(ctx, v.Id, h); err != nil {
						ds.log.WithField("Path", v.PathDisplay).Error(err)
						errs = multierr.Append(errs, err)
					}
					continue
				}
				ds.log.WithFields(logrus.Fields{
					"Path":    v.PathDisplay,
					"NewName": h.NewName,
				}).Info("Dropbox file already retitled")
				continue
			} else if !errors.Is(err, ErrNotFound) {
				errs = multierr.Append(errs, err)
				continue
			}
			inputs = append(inputs, ds.remoteFile(v))
			metas = append(metas, v)
		case *files.FolderMetadata:
			ds.log.WithFields(logrus.Fields{
				"Path": v.PathDisplay,
				"ID":   v.Id,
			}).Info("Dropbox folder")
		case *files.DeletedMetadata:
			ds.log.WithFields(logrus.Fields{
				"Path": v.PathDisplay,
			}).Info("Dropbox deleted")
		}
	}

	results := ds.proc.Process(ctx, inputs, nil)
	for i, res := range results {
		switch res.Status {
		case pipeline.StatusFailed:
			errs = multierr.Append(errs, errors.Errorf("%s: %s", metas[i].PathDisplay, res.Error))
		case pipeline.StatusSuccess:
			if err := ds.publish(ctx, metas[i], res); err != nil {
				ds.log.WithField("Path", metas[i].PathDisplay).Error(err)
				errs = multierr.Append(errs, err)
			}
		}
	}

	if errs == nil && newCursor != cursor {
		if err := ds.state.Set(ctx, key, newCursor); err != nil {
			return results, multierr.Append(errs, err)
		}
		ds.log.WithFields(logrus.Fields{
			"Path":   path,
			"Cursor": newCursor,
		}).Info("New cursor saved.")
	}
	return results, errs
}

func (ds *DropboxSynchronizer) remoteFile(meta *files.FileMetadata) pipeline.File {
	return pipeline.ReaderFile{
		FileName: meta.Name,
		Type:     pipeline.MediaTypeByName(meta.Name),
		Read: func(ctx context.Context) ([]byte, error) {
			return ds.dh.Download(ctx, meta.PathLower)
		},
	}
}

// handledFile is the state record of a retitled Dropbox file. It is written
// as soon as the renamed copy exists so a later sync never copies it twice.
type handledFile struct {
	NewName        string `json:"newName"`
	Title          string `json:"title"`
	LinkPath       string `json:"linkPath"`
	CatalogPending bool   `json:"catalogPending,omitempty"`
}

// decodeHandled reads a state record. Plain names written by older versions
// are treated as fully handled.
func decodeHandled(val string) handledFile {
	var h handledFile
	if err := json.Unmarshal([]byte(val), &h); err != nil {
		return handledFile{NewName: val}
	}
	return h
}

func (ds *DropboxSynchronizer) setHandled(ctx context.Context, fileID string, h handledFile) error {
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	c := CloudFile{FileID: fileID, Provider: providerDropbox}
	return ds.state.Set(ctx, c.GetKey(), string(data))
}

// publish copies a retitled file into the out folder, remembers it as
// handled and catalogs it. A failed catalog write is retried by the next
// sync without copying again.
func (ds *DropboxSynchronizer) publish(ctx context.Context, meta *files.FileMetadata, res pipeline.Result) error {
	h := handledFile{
		NewName:        res.NewName,
		Title:          res.Title,
		LinkPath:       meta.PathLower,
		CatalogPending: ds.catalog != nil,
	}
	if ds.outFolder != "" {
		copied, err := ds.dh.Copy(meta.PathLower, path.Join(ds.outFolder, res.NewName))
		if err != nil {
			return errors.Wrap(err, "cloudfile publish failed")
		}
		h.LinkPath = copied.PathLower
		h.NewName = copied.Name
		ds.log.WithFields(logrus.Fields{
			"From": meta.PathDisplay,
			"To":   copied.PathDisplay,
		}).Info("Renamed copy created.")
	}

	if err := ds.setHandled(ctx, meta.Id, h); err != nil {
		return errors.Wrap(err, "cloudfile publish failed")
	}
	if ds.catalog == nil {
		return nil
	}
	return ds.catalogFile(ctx, meta.Id, h)
}

func (ds *DropboxSynchronizer) catalogFile(ctx context.Context, fileID string, h handledFile) error {
	c := &CloudFile{
		FileID:   fileID,
		Title:    h.Title,
		Tags:     []string{TagRetitled},
		Provider: providerDropbox,
	}
	link, err := ds.dh.FileLink(h.LinkPath)
	if err != nil {
		ds.log.WithError(err).Warn("cannot get dropbox link")
	}
	c.URL = link
	if err := ds.catalog.Record(ctx, c); err != nil {
		return errors.Wrap(err, "cloudfile catalog failed")
	}
	ds.log.WithFields(logrus.Fields{
		"FileID":    c.FileID,
		"FileTitle": c.Title,
	}).Info("Catalog entry created.")

	h.CatalogPending = false
	return errors.Wrap(ds.setHandled(ctx, fileID, h), "cloudfile catalog failed")
}
