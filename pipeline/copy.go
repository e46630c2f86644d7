package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// maxCopies bounds the " (n)" suffixes tried before giving up.
const maxCopies = 1000

// CopyRenamed writes the unchanged bytes of f into dir under res.NewName. If
// that name is taken, "name (1).pdf", "name (2).pdf", ... are tried. It
// returns the path written.
func CopyRenamed(ctx context.Context, f File, dir string, res Result) (string, error) {
	if res.Status != StatusSuccess {
		return "", errors.Errorf("copy %s: result is %s", res.OriginalName, res.Status)
	}
	data, err := f.ReadAll(ctx)
	if err != nil {
		return "", errors.Wrap(err, "pipeline CopyRenamed failed")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "pipeline CopyRenamed failed")
	}

	ext := filepath.Ext(res.NewName)
	base := strings.TrimSuffix(res.NewName, ext)
	for n := 0; n < maxCopies; n++ {
		candidate := res.NewName
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		path := filepath.Join(dir, candidate)
		out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", errors.Wrap(err, "pipeline CopyRenamed failed")
		}
		_, werr := out.Write(data)
		cerr := out.Close()
		if werr != nil {
			return "", errors.Wrap(werr, "pipeline CopyRenamed failed")
		}
		if cerr != nil {
			return "", errors.Wrap(cerr, "pipeline CopyRenamed failed")
		}
		return path, nil
	}
	return "", errors.Errorf("copy %s: no free name for %s in %s", res.OriginalName, res.NewName, dir)
}
