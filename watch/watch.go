// Package watch turns a directory into a drop zone: PDFs written into it are
// retitled and copied into an output directory.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/shayanh/retitle/pipeline"
)

// DefaultSettle is how long a path must stay quiet before it is processed.
const DefaultSettle = 500 * time.Millisecond

type Watcher struct {
	in   string
	out  string
	proc *pipeline.Processor
	log  *logrus.Logger

	// Settle overrides DefaultSettle when positive.
	Settle time.Duration
	// OnResult, when set, is called by the worker after each file.
	OnResult func(res pipeline.Result, copyPath string)

	lock   sync.Mutex
	timers map[string]*time.Timer
	seen   map[string]fileStamp
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

// New creates a Watcher reading from in and writing renamed copies to out.
// in must be an existing directory different from out.
func New(in, out string, proc *pipeline.Processor, log *logrus.Logger) (*Watcher, error) {
	absIn, err := filepath.Abs(in)
	if err != nil {
		return nil, errors.Wrap(err, "watch New failed")
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return nil, errors.Wrap(err, "watch New failed")
	}
	if absIn == absOut {
		return nil, errors.Errorf("watch: input and output directory are both %s", absIn)
	}
	info, err := os.Stat(absIn)
	if err != nil {
		return nil, errors.Wrap(err, "watch New failed")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("watch: %s is not a directory", absIn)
	}
	return &Watcher{
		in:     absIn,
		out:    absOut,
		proc:   proc,
		log:    log,
		timers: map[string]*time.Timer{},
		seen:   map[string]fileStamp{},
	}, nil
}

func (w *Watcher) settle() time.Duration {
	if w.Settle > 0 {
		return w.Settle
	}
	return DefaultSettle
}

// Run watches the input directory until ctx is cancelled. Files are handled
// one at a time, after their last create or write event has settled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "watch Run failed")
	}
	defer fw.Close()
	if err := fw.Add(w.in); err != nil {
		return errors.Wrap(err, "watch Run failed")
	}
	w.log.WithFields(logrus.Fields{
		"In":  w.in,
		"Out": w.out,
	}).Info("Watching folder.")

	ready := make(chan string)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-ready:
				w.handle(ctx, path)
			}
		}
	}()
	defer wg.Wait()
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.schedule(ctx, event.Name, ready)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("fsnotify error")
		}
	}
}

// schedule (re)starts the settle timer of path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.settle())
		return
	}
	w.timers[path] = time.AfterFunc(w.settle(), func() {
		w.lock.Lock()
		delete(w.timers, path)
		w.lock.Unlock()
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.lock.Lock()
	defer w.lock.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}
	if w.seen[path] == stamp {
		return
	}
	w.seen[path] = stamp

	f := pipeline.LocalFile{Path: path}
	res := w.proc.ProcessLogged(ctx, f, nil)
	var copyPath string
	if res.Status == pipeline.StatusSuccess {
		copyPath, err = pipeline.CopyRenamed(ctx, f, w.out, res)
		if err != nil {
			w.log.WithField("Path", path).WithError(err).Error("cannot write renamed copy")
		} else {
			w.log.WithFields(logrus.Fields{
				"From": path,
				"To":   copyPath,
			}).Info("Renamed copy created.")
		}
	}
	if w.OnResult != nil {
		w.OnResult(res, copyPath)
	}
}
