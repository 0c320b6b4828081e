// Package archive packs a multi-file dataset directory into a single
// self-described stream and back, and transfers packed archives to
// S3-compatible object storage. The stream is a tar of the dataset
// directory behind a compression codec named in the archive header.
package archive

import (
	"archive/tar"
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// magic opens every archive, followed by the codec name and a
// newline, then the compressed tar stream.
const magic = "dafpack1 "

type packOptions struct {
	compression Compression
}

// PackOption configures Pack.
type PackOption func(*packOptions)

// WithCompression selects the compression codec; the default is zstd.
func WithCompression(c Compression) PackOption {
	return func(o *packOptions) { o.compression = c }
}

// Pack writes the dataset directory at dir to w as one archive
// stream.
func Pack(dir string, w io.Writer, optFns ...PackOption) error {
	o := packOptions{compression: zstdCompression{}}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if _, err := io.WriteString(w, magic+o.compression.Name()+"\n"); err != nil {
		return err
	}
	cw, err := o.compression.Compress(w)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if entry.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}

// Unpack restores an archive stream into dir, which is created if
// missing.
func Unpack(r io.Reader, dir string) error {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil {
		return err
	}
	if !strings.HasPrefix(header, magic) {
		return fmt.Errorf("not a dataset archive")
	}
	codecName := strings.TrimSuffix(strings.TrimPrefix(header, magic), "\n")
	compression, err := ByName(codecName)
	if err != nil {
		return err
	}
	cr, err := compression.Decompress(br)
	if err != nil {
		return err
	}
	defer cr.Close()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tr := tar.NewReader(cr)
	for {
		head, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		path, err := securePath(dir, head.Name)
		if err != nil {
			return err
		}
		switch head.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported entry type %d in archive: %s", head.Typeflag, head.Name)
		}
	}
}

// securePath joins an archive entry name under dir, rejecting names
// that would escape it.
func securePath(dir, name string) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(name))
	if !strings.HasPrefix(path, filepath.Clean(dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes the target directory: %s", name)
	}
	return path, nil
}
