package web

import (
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// maxWebhookBody bounds notification payloads; providers send small JSON lists.
const maxWebhookBody = 1 << 20

// Webhook is a storage provider that pushes change notifications.
type Webhook interface {
	// Verify checks the request signature over body.
	Verify(r *http.Request, body []byte) error
	// Notify handles a verified notification. It runs in its own goroutine.
	Notify()
}

// MountWebhook serves hook under prefix. GET echoes the challenge parameter
// so the provider can confirm the endpoint; POST is verified and then
// handed to hook asynchronously.
func (s *Server) MountWebhook(prefix string, hook Webhook) {
	router := s.router.PathPrefix(prefix).Subrouter()
	router.HandleFunc("", s.handleChallenge).Methods("GET")
	router.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		s.handleNotification(w, r, hook)
	}).Methods("POST")
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	challenge := r.URL.Query().Get("challenge")
	w.Header().Add("Content-Type", "text/plain")
	w.Header().Add("X-Content-Type-Options", "nosniff")
	if _, err := w.Write([]byte(challenge)); err != nil {
		s.log.Errorf("Error while writing challenge response: %v", err)
	}
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request, hook Webhook) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}
	if err := hook.Verify(r, body); err != nil {
		s.log.WithFields(logrus.Fields{
			"Path":  r.URL.Path,
			"Error": err,
		}).Warn("Webhook rejected.")
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorf("Recovered from panic: %s", r)
			}
		}()
		hook.Notify()
	}()
}
