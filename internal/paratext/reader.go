package paratext

import (
	"encoding/hex"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/ScriptureStats/core/errors"
)

// xzReadCloser decompresses through the xz reader while closing the
// underlying file.
type xzReadCloser struct {
	io.Reader
	f *os.File
}

func (r *xzReadCloser) Close() error {
	return r.f.Close()
}

// OpenSource opens a project source file for reading. Files with an .xz
// suffix are decompressed transparently.
func OpenSource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xz") {
		return f, nil
	}
	zr, err := xz.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.NewIO("decompress", path, err)
	}
	return &xzReadCloser{Reader: zr, f: f}, nil
}

// DigestSources computes a blake3 digest over the given source files. Files
// are hashed in sorted path order with their base names mixed in, so the
// digest identifies the project content independent of discovery order.
func DigestSources(paths []string) (string, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	h := blake3.New()
	for _, p := range sorted {
		rc, err := OpenSource(p)
		if err != nil {
			return "", err
		}
		h.Write([]byte(baseName(p)))
		h.Write([]byte{0})
		if _, err := io.Copy(h, rc); err != nil {
			rc.Close()
			return "", errors.NewIO("read", p, err)
		}
		rc.Close()
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
