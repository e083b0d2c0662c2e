package catalog

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBook struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Pages       []string `json:"pages"`
	TotalPages  int      `json:"totalPages"`
	Thumbnail   string   `json:"thumbnail"`
	Author      string   `json:"author"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	ReadingTime string   `json:"readingTime"`
}

func writeBookDir(t *testing.T, root, dir string, meta any, files ...string) {
	t.Helper()
	bookDir := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(bookDir, 0o755))
	if meta != nil {
		var data []byte
		if raw, ok := meta.(string); ok {
			data = []byte(raw)
		} else {
			var err error
			data, err = json.Marshal(meta)
			require.NoError(t, err)
		}
		require.NoError(t, os.WriteFile(filepath.Join(bookDir, MetadataFile), data, 0o644))
	}
	for _, f := range files {
		p := filepath.Join(bookDir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("img:"+f), 0o644))
	}
}

func writeZip(t *testing.T, p string, files map[string][]byte) {
	t.Helper()
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func sampleLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeBookDir(t, root, "book1", testBook{
		ID: "book1", Title: "The Hungry Caterpillar", Description: "A small caterpillar eats",
		Pages: []string{"b1.png", "b2.png", "b3.png", "b4.png"}, TotalPages: 4,
		Thumbnail: "b1.png", Author: "Eric", Category: "animals", Tags: []string{"Bugs", "food"},
		ReadingTime: "5 min",
	}, "b1.png", "b2.png", "b3.png", "b4.png")
	writeBookDir(t, root, "book2", testBook{
		ID: "book2", Title: "Moon Night", Description: "Goodnight to everything",
		Pages: []string{"p1.png", "p2.png", "p3.png"}, TotalPages: 5,
		Author: "Margaret", Category: "bedtime", Tags: []string{"sleep"},
	}, "p1.png", "p2.png", "p3.png")
	writeBookDir(t, root, "broken", "{not json")
	writeBookDir(t, root, "nometa", nil, "x.png")
	writeBookDir(t, root, "notitle", testBook{ID: "notitle", Pages: []string{"a.png"}}, "a.png")
	return root
}

func loadSample(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Load(context.Background(), LoadOptions{Root: sampleLibrary(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })
	return cat
}

func ids(books []Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func TestLoadSkipsBrokenBooks(t *testing.T) {
	cat := loadSample(t)
	assert.Equal(t, []string{"book1", "book2"}, ids(cat.Books()))
}

func TestLoadNormalizesTotalPages(t *testing.T) {
	cat := loadSample(t)
	b, ok := cat.Book("book2")
	require.True(t, ok)
	assert.Equal(t, 3, b.TotalPages)
	assert.Equal(t, 2, b.Spreads)
}

func TestLoadMissingRoot(t *testing.T) {
	_, err := Load(context.Background(), LoadOptions{Root: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestPageRefsReadFromSource(t *testing.T) {
	cat := loadSample(t)
	b, _ := cat.Book("book1")

	ref, ok := b.PageRef(3)
	require.True(t, ok)
	data, err := b.Source.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, "img:b4.png", string(data))

	_, ok = b.PageRef(4)
	assert.False(t, ok)
	assert.Equal(t, "b1.png", b.ThumbnailRef())
}

func TestDirSourceRejectsEscape(t *testing.T) {
	root := sampleLibrary(t)
	src := DirSource(filepath.Join(root, "book1"))
	_, err := src.ReadFile("../book2/p1.png")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestLookupAndFilters(t *testing.T) {
	cat := loadSample(t)

	_, ok := cat.Book("nope")
	assert.False(t, ok)

	assert.Equal(t, []string{"book2"}, ids(cat.ByCategory("bedtime")))
	assert.Empty(t, cat.ByCategory("space"))
	assert.Equal(t, []string{"book1"}, ids(cat.ByTag("Bugs")))
	assert.Empty(t, cat.ByTag("bugs"), "tag filter is exact")
	assert.Equal(t, []string{"animals", "bedtime"}, cat.Categories())
	assert.Equal(t, []string{"Bugs", "food", "sleep"}, cat.Tags())
	assert.Equal(t, 7, cat.TotalPages())

	first, ok := cat.First()
	require.True(t, ok)
	assert.Equal(t, "book1", first.ID)
}

func TestSearch(t *testing.T) {
	cat := loadSample(t)
	ctx := context.Background()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"book1", "book2"}},
		{"caterpillar", []string{"book1"}},
		{"MOON", []string{"book2"}},
		{"night", []string{"book2"}},
		{"bug", []string{"book1"}},
		{"ar", []string{"book1", "book2"}},
		{"eats", []string{"book1"}},
		{"zebra", nil},
		{"(.*)", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := cat.Search(ctx, tt.query)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestZipBookWithDiscoveredPages(t *testing.T) {
	root := t.TempDir()
	meta, err := json.Marshal(testBook{ID: "zipbook", Title: "Zipped", Thumbnail: "cover.png"})
	require.NoError(t, err)
	writeZip(t, filepath.Join(root, "zipbook.cbz"), map[string][]byte{
		"zipbook/metadata.json": meta,
		"zipbook/page10.png":    []byte("10"),
		"zipbook/page2.png":     []byte("2"),
		"zipbook/page1.png":     []byte("1"),
		"zipbook/cover.png":     []byte("c"),
		"zipbook/notes.txt":     []byte("n"),
	})

	cat, err := Load(context.Background(), LoadOptions{Root: root})
	require.NoError(t, err)
	defer cat.Close()

	b, ok := cat.Book("zipbook")
	require.True(t, ok)
	assert.Equal(t, []string{"page1.png", "page2.png", "page10.png"}, b.Pages)
	assert.Equal(t, 3, b.TotalPages)
	assert.Equal(t, 2, b.Spreads)

	ref, _ := b.PageRef(2)
	assert.Equal(t, "zipbook/page10.png", ref)
	data, err := b.Source.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, "10", string(data))

	_, err = b.Source.ReadFile("zipbook/missing.png")
	assert.True(t, IsNotFound(err))
}

func TestDuplicateIDsKeepFirst(t *testing.T) {
	root := t.TempDir()
	writeBookDir(t, root, "a", testBook{ID: "same", Title: "First", Pages: []string{"1.png"}}, "1.png")
	writeBookDir(t, root, "b", testBook{ID: "same", Title: "Second", Pages: []string{"1.png"}}, "1.png")

	cat, err := Load(context.Background(), LoadOptions{Root: root})
	require.NoError(t, err)
	defer cat.Close()

	require.Equal(t, 1, cat.Len())
	b, _ := cat.Book("same")
	assert.Equal(t, "First", b.Title)
}

func TestSortStrategies(t *testing.T) {
	names := []string{"p10.png", "p2.png", "p1.png"}

	tests := []struct {
		id   int
		want []string
	}{
		{SortNatural, []string{"p1.png", "p2.png", "p10.png"}},
		{SortSimple, []string{"p1.png", "p10.png", "p2.png"}},
		{SortEntryOrder, []string{"p10.png", "p2.png", "p1.png"}},
		{99, []string{"p1.png", "p2.png", "p10.png"}},
	}
	for _, tt := range tests {
		s := GetSortStrategy(tt.id)
		assert.Equal(t, tt.want, s.Sort(names), s.Name())
	}
	assert.Equal(t, []string{"p10.png", "p2.png", "p1.png"}, names, "input untouched")
	assert.Len(t, AllSortStrategies(), 3)
}

func TestWatcherReloadsOnMetadataChange(t *testing.T) {
	root := sampleLibrary(t)
	w, err := NewWatcher(LoadOptions{Root: root}, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	writeBookDir(t, root, "book3", testBook{ID: "book3", Title: "New", Pages: []string{"n.png"}}, "n.png")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cat := <-w.Updates():
			_, ok := cat.Book("book3")
			cat.Close()
			if ok {
				return
			}
		case <-deadline:
			t.Fatal("no reload with the new book")
		}
	}
}
