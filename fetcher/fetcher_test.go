package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestListWorkbookLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body>
			<a href="/files/todokede_hokkaido.xlsx">北海道</a>
			<a href="files/todokede_miyagi.XLSX">宮城</a>
			<a href="/files/notes.pdf">注意事項</a>
			<a href="/files/todokede_hokkaido.xlsx">北海道（再掲）</a>
			<a name="no-href-anchor">アンカー</a>
		</body></html>`))
	}))
	defer srv.Close()

	client := NewClient(100)
	links, err := client.ListWorkbookLinks(context.Background(), srv.URL+"/list/")
	if err != nil {
		t.Fatalf("ListWorkbookLinks: %v", err)
	}

	// 重複除去・pdf 除外・相対パス解決
	want := []string{
		srv.URL + "/files/todokede_hokkaido.xlsx",
		srv.URL + "/list/files/todokede_miyagi.XLSX",
	}
	if len(links) != len(want) {
		t.Fatalf("links = %v, want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %s, want %s", i, links[i], want[i])
		}
	}
}

func TestListWorkbookLinksHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(100)
	if _, err := client.ListWorkbookLinks(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestDownload(t *testing.T) {
	content := []byte("dummy workbook bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	dir := t.TempDir()
	client := NewClient(100)
	path, err := client.Download(context.Background(), srv.URL+"/data/todokede.xlsx", dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Base(path) != "todokede.xlsx" {
		t.Errorf("saved as %s, want todokede.xlsx", path)
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(saved) != string(content) {
		t.Errorf("saved content differs: %q", saved)
	}
}

func TestDownloadAll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<a href="/a.xlsx">a</a><a href="/b.xlsx">b</a>`))
	})
	mux.HandleFunc("/a.xlsx", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("workbook a"))
	})
	mux.HandleFunc("/b.xlsx", func(w http.ResponseWriter, r *http.Request) {
		// 片方の失敗は全体を止めない
		http.Error(w, "gone", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	client := NewClient(100)
	saved, err := client.DownloadAll(context.Background(), srv.URL+"/list", dir)
	if err != nil {
		t.Fatalf("DownloadAll: %v", err)
	}
	if len(saved) != 1 || filepath.Base(saved[0]) != "a.xlsx" {
		t.Errorf("saved = %v, want only a.xlsx", saved)
	}
}

func TestDownloadAllNoLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>リンクなし</body></html>`))
	}))
	defer srv.Close()

	client := NewClient(100)
	if _, err := client.DownloadAll(context.Background(), srv.URL, t.TempDir()); err == nil {
		t.Fatal("expected error when the page has no xlsx links")
	}
}
