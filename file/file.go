// Package file loads and saves score files: plain .mscx and .musicxml/.xml,
// and the compressed .mscz and .mxl containers.
package file

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/tree"
)

type Kind string

const (
	Mscx     Kind = "mscx"
	Mscz     Kind = "mscz"
	MusicXML Kind = "musicxml"
	Mxl      Kind = "mxl"
)

type entry struct {
	header zip.FileHeader
	data   []byte
}

// Score is a loaded score file. For containers, Tree is the main document and
// the remaining entries are written back unchanged on Save.
type Score struct {
	Path string
	Kind Kind
	Tree *tree.Tree

	entries []entry
	// index of the main document in entries
	main int
}

func KindOf(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mscx":
		return Mscx, nil
	case ".mscz":
		return Mscz, nil
	case ".musicxml", ".xml":
		return MusicXML, nil
	case ".mxl":
		return Mxl, nil
	}
	return "", model.Fail(model.UnsupportedDocument,
		fmt.Sprintf("unsupported file extension %q", filepath.Ext(path)),
		"Only .mscx, .mscz, .musicxml, .xml and .mxl files are supported")
}

func Load(path string) (*Score, error) {
	kind, err := KindOf(path)
	if err != nil {
		return nil, err
	}
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("file: read %s: %w", path, err)
	}
	res := &Score{Path: path, Kind: kind, main: -1}
	switch kind {
	case Mscx, MusicXML:
		res.Tree, err = tree.Decode(bytes.NewReader(dat))
		if err != nil {
			return nil, fmt.Errorf("file: %s: %w", path, err)
		}
		return res, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(dat), int64(len(dat)))
	if err != nil {
		return nil, fmt.Errorf("file: open archive %s: %w", path, err)
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("file: %s: open %s: %w", path, f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("file: %s: read %s: %w", path, f.Name, err)
		}
		res.entries = append(res.entries, entry{header: f.FileHeader, data: body})
		if res.main < 0 && isMain(kind, f.Name) {
			res.main = len(res.entries) - 1
		}
	}
	if res.main < 0 {
		return nil, model.Fail(model.UnsupportedDocument,
			fmt.Sprintf("no score document in %s", path),
			"The archive does not contain a score")
	}
	res.Tree, err = tree.Decode(bytes.NewReader(res.entries[res.main].data))
	if err != nil {
		return nil, fmt.Errorf("file: %s: %s: %w", path, res.entries[res.main].header.Name, err)
	}
	return res, nil
}

func isMain(kind Kind, name string) bool {
	lower := strings.ToLower(name)
	if kind == Mscz {
		return strings.HasSuffix(lower, ".mscx")
	}
	if strings.HasPrefix(lower, "meta-inf/") {
		return false
	}
	return strings.HasSuffix(lower, ".xml") || strings.HasSuffix(lower, ".musicxml")
}

// Save writes the score to path, which must have the same kind of extension as
// the loaded file. The file is written to a temporary name and renamed into place.
func (s *Score) Save(path string) error {
	kind, err := KindOf(path)
	if err != nil {
		return err
	}
	if !compatible(s.Kind, kind) {
		return fmt.Errorf("file: cannot save %s score as %s", s.Kind, kind)
	}

	var buf bytes.Buffer
	if err := tree.Encode(&buf, s.Tree); err != nil {
		return fmt.Errorf("file: encode %s: %w", path, err)
	}
	out := buf.Bytes()
	if s.main >= 0 {
		out, err = s.archive(buf.Bytes())
		if err != nil {
			return fmt.Errorf("file: %s: %w", path, err)
		}
	}
	return WriteAtomic(path, out)
}

func compatible(a Kind, b Kind) bool {
	container := func(k Kind) bool { return k == Mscz || k == Mxl }
	return container(a) == container(b)
}

func (s *Score) archive(doc []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, e := range s.entries {
		header := e.header
		data := e.data
		if i == s.main {
			data = doc
		}
		// mimetype entries must stay uncompressed
		if header.Name != "mimetype" {
			header.Method = zip.Deflate
		}
		w, err := zw.CreateHeader(&header)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteAtomic replaces path through a temporary file in the same directory, so
// readers never see a partly written file.
func WriteAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("file: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("file: rename %s: %w", path, err)
	}
	return nil
}

// With returns a copy of s holding t, sharing the other archive entries.
func (s *Score) With(t *tree.Tree) *Score {
	cp := *s
	cp.Tree = t
	return &cp
}
