package cloudsync

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/sharing"
	"github.com/pkg/errors"
)

// downloadAttempts bounds retries of a single download.
const downloadAttempts = 3

// DropboxAPI is the part of Dropbox a sync needs.
type DropboxAPI interface {
	ListFolder(path string, cursor string) ([]files.IsMetadata, string, error)
	Download(ctx context.Context, path string) ([]byte, error)
	Copy(from, to string) (*files.FileMetadata, error)
	FileLink(path string) (string, error)
}

// DropboxHandler handles Dropbox API.
type DropboxHandler struct {
	config dropbox.Config
	fc     files.Client
	sc     sharing.Client
}

func NewDropboxHandler(token string) *DropboxHandler {
	config := dropbox.Config{
		Token:    token,
		LogLevel: dropbox.LogInfo,
	}
	filesClient := files.New(config)
	sharingClient := sharing.New(config)

	return &DropboxHandler{
		config: config,
		fc:     filesClient,
		sc:     sharingClient,
	}
}

func (dh *DropboxHandler) ListFolder(path string, cursor string) ([]files.IsMetadata, string, error) {
	var entries []files.IsMetadata
	for hasMore := true; hasMore; {
		var err error
		var resp *files.ListFolderResult
		if cursor == "" {
			arg := files.NewListFolderArg(path)
			resp, err = dh.fc.ListFolder(arg)
		} else {
			arg := files.NewListFolderContinueArg(cursor)
			resp, err = dh.fc.ListFolderContinue(arg)
		}
		if err != nil {
			return entries, cursor, errors.Wrap(err, "dropbox ListFolder failed")
		}
		entries = append(entries, resp.Entries...)
		cursor = resp.Cursor
		hasMore = resp.HasMore
	}
	return entries, cursor, nil
}

// Download fetches a file's content, retrying transient failures.
func (dh *DropboxHandler) Download(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			_, reader, err := dh.fc.Download(files.NewDownloadArg(path))
			if err != nil {
				return err
			}
			defer reader.Close()
			body, err = io.ReadAll(reader)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(downloadAttempts),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "dropbox Download failed")
	}
	return body, nil
}

// Copy copies a file, letting Dropbox pick a free name when to is taken.
func (dh *DropboxHandler) Copy(from, to string) (*files.FileMetadata, error) {
	arg := files.NewRelocationArg(from, to)
	arg.Autorename = true
	res, err := dh.fc.CopyV2(arg)
	if err != nil {
		return nil, errors.Wrap(err, "dropbox Copy failed")
	}
	meta, ok := res.Metadata.(*files.FileMetadata)
	if !ok {
		return nil, errors.Errorf("dropbox Copy failed: unexpected metadata %T", res.Metadata)
	}
	return meta, nil
}

func (dh *DropboxHandler) FileLink(path string) (string, error) {
	// TODO: Use batch API
	arg := sharing.NewGetFileMetadataArg(path)
	sharedFileMetadata, err := dh.sc.GetFileMetadata(arg)
	if err != nil {
		return "", errors.Wrap(err, "dropbox FileLink failed")
	}
	link := strings.TrimSuffix(sharedFileMetadata.PreviewUrl, "?dl=0")
	return link, nil
}
