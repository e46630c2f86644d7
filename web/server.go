// Package web serves the retitle pipeline over HTTP: upload PDFs, get the
// proposed names back, and download the original bytes under the new name.
package web

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/shayanh/retitle"
	"github.com/shayanh/retitle/pipeline"
)

// FormField is the multipart field carrying uploaded files.
const FormField = "files"

// multipartMemory is kept in memory by ParseMultipartForm; the rest spills to
// temporary files.
const multipartMemory = 32 << 20

// UploadResult is one entry of the upload response.
type UploadResult struct {
	pipeline.Result
	Download string `json:"download,omitempty"`
}

type Server struct {
	proc      *pipeline.Processor
	store     *Store
	maxUpload int64
	log       *logrus.Logger
	router    *mux.Router
}

func NewServer(proc *pipeline.Processor, store *Store, maxUpload int64, log *logrus.Logger) *Server {
	s := &Server{
		proc:      proc,
		store:     store,
		maxUpload: maxUpload,
		log:       log,
		router:    mux.NewRouter(),
	}
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/files", s.handleUpload).Methods("POST")
	api.HandleFunc("/files/{id}", s.handleDownload).Methods("GET")
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.log.Errorf("Error while writing health response: %v", err)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "expected multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.log.WithError(err).Warn("cannot remove multipart temp files")
		}
	}()

	headers := r.MultipartForm.File[FormField]
	if len(headers) == 0 {
		http.Error(w, "no files in field "+FormField, http.StatusBadRequest)
		return
	}

	files := make([]pipeline.File, len(headers))
	for i, fh := range headers {
		files[i] = uploadedFile(fh)
	}
	results := s.proc.Process(r.Context(), files, nil)

	resp := make([]UploadResult, len(results))
	for i, res := range results {
		resp[i] = UploadResult{Result: res}
		if res.Status != pipeline.StatusSuccess {
			continue
		}
		data, err := files[i].ReadAll(r.Context())
		if err != nil {
			resp[i].Result = pipeline.Failed(res.OriginalName, err)
			continue
		}
		id := s.store.Put(res.NewName, data)
		resp[i].Download = "/api/files/" + id
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Errorf("Error while writing upload response: %v", err)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	d, ok := s.store.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", pipeline.PDFMediaType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(d.Data); err != nil {
		s.log.Errorf("Error while writing download response: %v", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rww := retitle.NewResponseWriterWrapper(w)
		next.ServeHTTP(rww, r)
		s.log.WithFields(logrus.Fields{
			"Method":  r.Method,
			"Path":    r.URL.Path,
			"Status":  rww.Status(),
			"Bytes":   rww.Written(),
			"Elapsed": time.Since(start),
		}).Info("HTTP request")
	})
}

// uploadedFile reads a multipart part up front. Read failures surface when
// the pipeline reads the file.
func uploadedFile(fh *multipart.FileHeader) pipeline.File {
	mediaType, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}
	data, err := readPart(fh)
	if err != nil {
		return pipeline.ReaderFile{
			FileName: fh.Filename,
			Type:     mediaType,
			Read: func(ctx context.Context) ([]byte, error) {
				return nil, err
			},
		}
	}
	return pipeline.MemFile{FileName: fh.Filename, Type: mediaType, Data: data}
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
