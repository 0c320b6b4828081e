package archive

import (
	"context"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when downloading an archive that does not
// exist in the bucket.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "archive: object not found" }

// ObjectStore uploads and downloads packed dataset archives to
// S3-compatible object storage.
type ObjectStore struct {
	client  *minio.Client
	bucket  string
	prefix  string
	limiter *rate.Limiter
	logger  *slog.Logger
}

type storeOptions struct {
	prefix         string
	bytesPerSecond int
	logger         *slog.Logger
}

// StoreOption configures an ObjectStore.
type StoreOption func(*storeOptions)

// WithPrefix prepends a key prefix to every archive name.
func WithPrefix(prefix string) StoreOption {
	return func(o *storeOptions) { o.prefix = prefix }
}

// WithRateLimit caps the transfer throughput in bytes per second.
// Zero means unlimited.
func WithRateLimit(bytesPerSecond int) StoreOption {
	return func(o *storeOptions) { o.bytesPerSecond = bytesPerSecond }
}

// WithLogger sets the structured logger for transfer events.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(o *storeOptions) { o.logger = logger }
}

// NewObjectStore creates an ObjectStore over a ready minio client and
// bucket.
func NewObjectStore(client *minio.Client, bucket string, optFns ...StoreOption) *ObjectStore {
	o := storeOptions{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	s := &ObjectStore{client: client, bucket: bucket, prefix: o.prefix, logger: o.logger}
	if o.bytesPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(o.bytesPerSecond), o.bytesPerSecond)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *ObjectStore) key(name string) string {
	return path.Join(s.prefix, name)
}

// Upload packs the dataset directory at dir and streams the archive
// to the object named name.
func (s *ObjectStore) Upload(ctx context.Context, name, dir string, optFns ...PackOption) error {
	key := s.key(name)
	pr, pw := io.Pipe()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := Pack(dir, s.limitWriter(ctx, pw), optFns...)
		pw.CloseWithError(err)
		return err
	})
	g.Go(func() error {
		_, err := s.client.PutObject(ctx, s.bucket, key, pr, -1, minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
		pr.CloseWithError(err)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Debug("uploaded dataset archive", "bucket", s.bucket, "key", key, "dir", dir)
	return nil
}

// Download fetches the archive named name and unpacks it into dir.
func (s *ObjectStore) Download(ctx context.Context, name, dir string) error {
	key := s.key(name)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()
	if err := Unpack(s.limitReader(ctx, obj), dir); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return ErrNotFound
		}
		return err
	}
	s.logger.Debug("downloaded dataset archive", "bucket", s.bucket, "key", key, "dir", dir)
	return nil
}

// Delete removes an archive; deleting a missing archive is not an
// error.
func (s *ObjectStore) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil
		}
	}
	return err
}

// List returns the archive names under prefix, sorted.
func (s *ObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.key(prefix)
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    full,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *ObjectStore) limitWriter(ctx context.Context, w io.Writer) io.Writer {
	if s.limiter == nil {
		return w
	}
	return &limitedWriter{ctx: ctx, limiter: s.limiter, w: w}
}

func (s *ObjectStore) limitReader(ctx context.Context, r io.Reader) io.Reader {
	if s.limiter == nil {
		return r
	}
	return &limitedReader{ctx: ctx, limiter: s.limiter, r: r}
}

type limitedWriter struct {
	ctx     context.Context
	limiter *rate.Limiter
	w       io.Writer
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > w.limiter.Burst() {
			chunk = chunk[:w.limiter.Burst()]
		}
		if err := w.limiter.WaitN(w.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := w.w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		p = p[len(chunk):]
	}
	return written, nil
}

type limitedReader struct {
	ctx     context.Context
	limiter *rate.Limiter
	r       io.Reader
}

func (r *limitedReader) Read(p []byte) (int, error) {
	if len(p) > r.limiter.Burst() {
		p = p[:r.limiter.Burst()]
	}
	n, err := r.r.Read(p)
	if n > 0 {
		if waitErr := r.limiter.WaitN(r.ctx, n); waitErr != nil && err == nil {
			err = waitErr
		}
	}
	return n, err
}
