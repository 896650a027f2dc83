// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/weekly-radar/pkg/types"
)

func summary(week string, items ...string) types.WeeklySummary {
	s := types.WeeklySummary{
		GeneratedAt: "2025-01-13T09:00:00Z",
		WeekStart:   week,
		WeekEnd:     "2025-01-12",
		LastUpdated: "2025-01-13",
		Sites:       []types.SiteBlock{{SourceID: types.SourceGitHub, SiteSummary: "s", Items: []types.Record{}}},
	}
	for i, u := range items {
		s.Sites[0].Items = append(s.Sites[0].Items, types.Record{SourceID: types.SourceGitHub, URL: u, Title: u, Rank: i + 1})
	}
	return s
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, a *Archive)) {
	t.Run("file", func(t *testing.T) {
		s, err := NewFileStore(t.TempDir())
		require.NoError(t, err)
		fn(t, New(s))
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStore(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		fn(t, New(s))
	})
}

func TestWriteReadRoundTrip(t *testing.T) {
	stores(t, func(t *testing.T, a *Archive) {
		ctx := context.Background()
		want := summary("2025-01-06", "https://github.com/a/b")
		require.NoError(t, a.Write(ctx, "2025-01-06", want))

		got, found, err := a.Read(ctx, "2025-01-06")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want.WeekStart, got.WeekStart)
		assert.Equal(t, want.Sites[0].Items[0].URL, got.Sites[0].Items[0].URL)
		assert.Equal(t, 1, got.TotalItems())
	})
}

func TestReadAbsent(t *testing.T) {
	stores(t, func(t *testing.T, a *Archive) {
		got, found, err := a.Read(context.Background(), "2025-01-06")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	})
}

func TestWriteOverwrites(t *testing.T) {
	stores(t, func(t *testing.T, a *Archive) {
		ctx := context.Background()
		require.NoError(t, a.Write(ctx, "2025-01-06", summary("2025-01-06", "u1", "u2")))
		require.NoError(t, a.Write(ctx, "2025-01-06", summary("2025-01-06", "u3")))

		got, _, err := a.Read(ctx, "2025-01-06")
		require.NoError(t, err)
		require.Equal(t, 1, got.TotalItems())
		assert.Equal(t, "u3", got.Sites[0].Items[0].URL)

		keys, err := a.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-01-06"}, keys)
	})
}

func TestListKeysDescending(t *testing.T) {
	stores(t, func(t *testing.T, a *Archive) {
		ctx := context.Background()
		for _, k := range []string{"2025-01-06", "2025-01-20", "2024-12-30", "2025-01-13"} {
			require.NoError(t, a.Write(ctx, k, summary(k)))
		}
		keys, err := a.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-01-20", "2025-01-13", "2025-01-06", "2024-12-30"}, keys)
	})
}

func TestList(t *testing.T) {
	stores(t, func(t *testing.T, a *Archive) {
		ctx := context.Background()
		require.NoError(t, a.Write(ctx, "2025-01-06", summary("2025-01-06", "u1", "u2")))
		require.NoError(t, a.Write(ctx, "2024-12-30", summary("2024-12-30")))

		infos, err := a.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, WeekInfo{Key: "2025-01-06", WeekStart: "2025-01-06", WeekEnd: "2025-01-12", LastUpdated: "2025-01-13", TotalItems: 2}, infos[0])
		assert.Equal(t, 0, infos[1].TotalItems)
	})
}

func TestInvalidKeyRejected(t *testing.T) {
	stores(t, func(t *testing.T, a *Archive) {
		ctx := context.Background()
		for _, k := range []string{"", "2025-1-6", "../etc/passwd", "2025-02-30"} {
			assert.ErrorIs(t, a.Write(ctx, k, summary(k)), ErrInvalidKey, k)
			_, _, err := a.Read(ctx, k)
			assert.ErrorIs(t, err, ErrInvalidKey, k)
		}
	})
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, New(s).Write(context.Background(), "2025-01-06", summary("2025-01-06")))

	data, err := os.ReadFile(filepath.Join(dir, "weeks", "2025-01-06.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, field := range []string{"generated_at", "week_start", "week_end", "last_updated", "sites"} {
		assert.Contains(t, doc, field)
	}

	// Stray files are not weeks.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weeks", "notes.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weeks", "README.md"), []byte("x"), 0o644))
	keys, err := s.ListKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-06"}, keys)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files are cleaned up")
	}
}

func TestOpen(t *testing.T) {
	for _, backend := range []types.ArchiveBackend{types.ArchiveFile, types.ArchiveSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			a, closer, err := Open(types.ArchiveConfig{Backend: backend, DataDir: t.TempDir()})
			require.NoError(t, err)
			require.NotNil(t, closer)
			defer closer.Close()
			require.NoError(t, a.Write(context.Background(), "2025-01-06", summary("2025-01-06")))
		})
	}
	_, _, err := Open(types.ArchiveConfig{Backend: "s3", DataDir: t.TempDir()})
	assert.Error(t, err)
}

func TestIsPopulated(t *testing.T) {
	assert.False(t, IsPopulated(nil))
	empty := summary("2025-01-06")
	assert.False(t, IsPopulated(&empty))
	full := summary("2025-01-06", "u1")
	assert.True(t, IsPopulated(&full))
	assert.False(t, IsPopulated(&types.WeeklySummary{}))
}

func TestEncode(t *testing.T) {
	s := summary("2025-01-06", "u1")

	var jb bytes.Buffer
	require.NoError(t, Encode(&jb, s, "json"))
	var fromJSON types.WeeklySummary
	require.NoError(t, json.Unmarshal(jb.Bytes(), &fromJSON))
	assert.Equal(t, "2025-01-06", fromJSON.WeekStart)

	var yb bytes.Buffer
	require.NoError(t, Encode(&yb, s, "yaml"))
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(yb.Bytes(), &fromYAML))
	assert.Equal(t, "2025-01-06", fromYAML["week_start"])

	assert.Error(t, Encode(&jb, s, "xml"))
}
