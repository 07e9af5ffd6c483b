// Package storage writes analysis reports to Cloud Storage or the local file system.
package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
	"github.com/secmon-lab/riskmap/pkg/utils/safe"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

var ErrInvalidLocation = goerr.New("invalid report location")

// Writer is a ReportWriter holding resources
type Writer interface {
	interfaces.ReportWriter
	Close() error
}

// Location is a parsed report destination. Bucket is empty for local paths.
type Location struct {
	Bucket string
	Dir    string
	Name   string
}

// ParseLocation splits "gs://bucket/dir/name.json" or "dir/name.json"
func ParseLocation(loc string) (Location, error) {
	if rest, ok := strings.CutPrefix(loc, gcsScheme); ok {
		bucket, object, _ := strings.Cut(rest, "/")
		if bucket == "" || object == "" || strings.HasSuffix(object, "/") {
			return Location{}, goerr.Wrap(ErrInvalidLocation, "bucket and object are required", goerr.V("location", loc))
		}
		dir, name := path.Split(object)
		return Location{Bucket: bucket, Dir: strings.TrimSuffix(dir, "/"), Name: name}, nil
	}

	if loc == "" || strings.HasSuffix(loc, string(filepath.Separator)) {
		return Location{}, goerr.Wrap(ErrInvalidLocation, "file name is required", goerr.V("location", loc))
	}
	dir, name := filepath.Split(loc)
	return Location{Dir: filepath.Clean(dir), Name: name}, nil
}

// Open returns a writer rooted at the directory of loc and the name to write under
func Open(ctx context.Context, loc string, opts ...option.ClientOption) (Writer, string, error) {
	l, err := ParseLocation(loc)
	if err != nil {
		return nil, "", err
	}
	if l.Bucket == "" {
		return NewLocal(l.Dir), l.Name, nil
	}

	w, err := NewGCS(ctx, l.Bucket, l.Dir, opts...)
	if err != nil {
		return nil, "", err
	}
	return w, l.Name, nil
}

// GCS writes reports as objects of a bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS creates a Cloud Storage writer. Objects are written under prefix when set.
func NewGCS(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

func (g *GCS) objectName(name string) string {
	if g.prefix == "" {
		return name
	}
	return g.prefix + "/" + name
}

// WriteReport uploads data as a JSON object
func (g *GCS) WriteReport(ctx context.Context, name string, data []byte) error {
	object := g.objectName(name)
	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "no-cache"

	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to write report object",
			goerr.V("bucket", g.bucket),
			goerr.V("object", object))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize report object",
			goerr.V("bucket", g.bucket),
			goerr.V("object", object))
	}

	logging.From(ctx).Info("report uploaded", "location", gcsScheme+g.bucket+"/"+object, "size", len(data))
	return nil
}

// Close releases the storage client
func (g *GCS) Close() error {
	if err := g.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close storage client")
	}
	return nil
}

// Local writes reports as files of a directory
type Local struct {
	dir string
}

// NewLocal creates a writer rooted at dir, which is created on first write
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

// WriteReport writes data to dir/name
func (l *Local) WriteReport(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(l.dir, 0750); err != nil {
		return goerr.Wrap(err, "failed to create report directory", goerr.V("dir", l.dir))
	}

	p := filepath.Join(l.dir, name)
	if err := os.WriteFile(p, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write report file", goerr.V("path", p))
	}

	logging.From(ctx).Info("report written", "path", p, "size", len(data))
	return nil
}

// Close does nothing
func (l *Local) Close() error {
	return nil
}
