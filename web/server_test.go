package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/shayanh/retitle/extract"
	"github.com/shayanh/retitle/internal/testutil"
	"github.com/shayanh/retitle/pipeline"
)

type part struct {
	name, contentType string
	data              []byte
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FormField, p.name))
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(p.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return body, mw.FormDataContentType()
}

func newTestServer(maxUpload int64) *Server {
	log, _ := test.NewNullLogger()
	proc := pipeline.New(extract.NewPDFCPU(), log)
	return NewServer(proc, NewStore(time.Hour), maxUpload, log)
}

func TestUploadAndDownload(t *testing.T) {
	srv := newTestServer(1 << 20)
	report := testutil.SinglePagePDF(
		testutil.Line{Text: "Annual", X: 72, Y: 700, Size: 10},
		testutil.Line{Text: "Report", X: 72, Y: 690, Size: 10},
		testutil.Line{Text: "2023", X: 72, Y: 680, Size: 10},
	)
	body, contentType := multipartBody(t,
		part{"scan.pdf", "application/pdf", report},
		part{"notes.txt", "text/plain", []byte("hello")},
		part{"broken.pdf", "application/pdf", testutil.Corrupt()},
	)

	req := httptest.NewRequest("POST", "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var results []UploadResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}

	if results[0].Status != pipeline.StatusSuccess || results[0].NewName != "Annual Report 2023.pdf" || results[0].Download == "" {
		t.Errorf("result 0 = %+v", results[0])
	}
	if results[1].Status != pipeline.StatusSkipped || results[1].Download != "" {
		t.Errorf("result 1 = %+v", results[1])
	}
	if results[2].Status != pipeline.StatusFailed || results[2].OriginalName != "broken.pdf" || results[2].Error == "" {
		t.Errorf("result 2 = %+v", results[2])
	}

	dl := httptest.NewRecorder()
	srv.ServeHTTP(dl, httptest.NewRequest("GET", results[0].Download, nil))
	if dl.Code != http.StatusOK {
		t.Fatalf("download status = %d", dl.Code)
	}
	got, _ := io.ReadAll(dl.Body)
	if !bytes.Equal(got, report) {
		t.Error("downloaded bytes differ from upload")
	}
	_, params, err := mime.ParseMediaType(dl.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatal(err)
	}
	if params["filename"] != "Annual Report 2023.pdf" {
		t.Errorf("filename = %q", params["filename"])
	}
}

func TestDownloadUnknown(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(1<<20).ServeHTTP(rec, httptest.NewRequest("GET", "/api/files/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestUploadRejects(t *testing.T) {
	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/files", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newTestServer(1<<20).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
	t.Run("no files", func(t *testing.T) {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		if err := mw.WriteField("other", "x"); err != nil {
			t.Fatal(err)
		}
		mw.Close()
		req := httptest.NewRequest("POST", "/api/files", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		newTestServer(1<<20).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
	t.Run("too large", func(t *testing.T) {
		body, contentType := multipartBody(t, part{"big.pdf", "application/pdf", bytes.Repeat([]byte("x"), 4096)})
		req := httptest.NewRequest("POST", "/api/files", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newTestServer(512).ServeHTTP(rec, req)
		if rec.Code != http.StatusRequestEntityTooLarge && rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(1<<20).ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}
