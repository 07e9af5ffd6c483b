package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskmap/pkg/service/storage"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		loc  string
		want storage.Location
	}{
		{"gs://reports/riskmap/latest.json", storage.Location{Bucket: "reports", Dir: "riskmap", Name: "latest.json"}},
		{"gs://reports/latest.json", storage.Location{Bucket: "reports", Name: "latest.json"}},
		{"out/latest.json", storage.Location{Dir: "out", Name: "latest.json"}},
		{"latest.json", storage.Location{Dir: ".", Name: "latest.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.loc, func(t *testing.T) {
			got, err := storage.ParseLocation(tt.loc)
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}

	for _, loc := range []string{"", "gs://", "gs://bucket", "gs://bucket/", "gs:///object.json", "out/"} {
		t.Run("invalid "+loc, func(t *testing.T) {
			_, err := storage.ParseLocation(loc)
			gt.Error(t, err).Is(storage.ErrInvalidLocation)
		})
	}
}

func TestLocalWriter(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested")

	w, name, err := storage.Open(ctx, filepath.Join(dir, "report.json"))
	gt.NoError(t, err).Required()
	gt.Value(t, name).Equal("report.json")
	defer func() { gt.NoError(t, w.Close()) }()

	gt.NoError(t, w.WriteReport(ctx, name, []byte(`{"ok":true}`))).Required()

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	gt.NoError(t, err).Required()
	gt.Value(t, string(data)).Equal(`{"ok":true}`)
}

func TestGCSWriter(t *testing.T) {
	bucket, ok := os.LookupEnv("TEST_GCS_BUCKET")
	if !ok {
		t.Skip("TEST_GCS_BUCKET is not set")
	}

	ctx := context.Background()
	w, name, err := storage.Open(ctx, "gs://"+bucket+"/riskmap-test/report.json")
	gt.NoError(t, err).Required()
	defer func() { gt.NoError(t, w.Close()) }()

	gt.NoError(t, w.WriteReport(ctx, name, []byte(`{"ok":true}`)))
}
