package cloudsync

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SignatureHeader carries the hex HMAC-SHA256 of the body keyed by the app
// secret.
const SignatureHeader = "X-Dropbox-Signature"

// DropboxWebhook syncs rootPath whenever Dropbox reports a change.
type DropboxWebhook struct {
	rootPath  string
	appSecret string
	ds        *DropboxSynchronizer
	log       *logrus.Logger
}

// NewDropboxWebhook creates the webhook. An empty appSecret accepts
// unsigned notifications.
func NewDropboxWebhook(rootPath, appSecret string, ds *DropboxSynchronizer, log *logrus.Logger) *DropboxWebhook {
	return &DropboxWebhook{
		rootPath:  rootPath,
		appSecret: appSecret,
		ds:        ds,
		log:       log,
	}
}

func (dw *DropboxWebhook) Verify(r *http.Request, body []byte) error {
	if dw.appSecret == "" {
		return nil
	}
	got, err := hex.DecodeString(r.Header.Get(SignatureHeader))
	if err != nil {
		return errors.Wrap(err, "dropbox Verify failed")
	}
	mac := hmac.New(sha256.New, []byte(dw.appSecret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return errors.New("dropbox Verify failed: signature mismatch")
	}
	return nil
}

func (dw *DropboxWebhook) Notify() {
	results, err := dw.ds.SyncFolder(context.Background(), dw.rootPath)
	if err != nil {
		dw.log.Error(err)
	}
	for _, res := range results {
		dw.log.WithFields(logrus.Fields{
			"Name":    res.OriginalName,
			"Status":  res.Status.String(),
			"NewName": res.NewName,
		}).Info("Synced file")
	}
}
