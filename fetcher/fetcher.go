package fetcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Client 厚生局の届出一覧ページから Excel ファイルを収集するクライアント。
// 相手は公的サイトなのでリクエスト間隔をレートリミッタで抑える。
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// NewClient フェッチャを作成する。rps はリクエスト/秒の上限。
func NewClient(rps float64) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		userAgent:  "kijunserver-fetcher/1.0",
	}
}

// get レートリミットを守って1リクエスト発行する
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}
	return resp, nil
}

// ListWorkbookLinks 一覧ページ内の .xlsx リンクを絶対 URL で返す。
// 重複は除き、ページ内の出現順を保つ。
func (c *Client) ListWorkbookLinks(ctx context.Context, pageURL string) ([]string, error) {
	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("一覧ページを取得できません %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("一覧ページを解析できません %s: %w", pageURL, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.HasSuffix(strings.ToLower(href), ".xlsx") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})
	return links, nil
}

// Download 1ファイルをダウンロードして destDir に保存し、保存先パスを返す
func (c *Client) Download(ctx context.Context, fileURL, destDir string) (string, error) {
	resp, err := c.get(ctx, fileURL)
	if err != nil {
		return "", fmt.Errorf("ダウンロードできません %s: %w", fileURL, err)
	}
	defer resp.Body.Close()

	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", err
	}
	name := filepath.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("ファイル名を決定できません: %s", fileURL)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	destPath := filepath.Join(destDir, name)

	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("書き込みに失敗しました %s: %w", destPath, err)
	}
	return destPath, nil
}

// DownloadAll 一覧ページの全 Excel をダウンロードする。
// 個々の失敗はログに残して続行し、保存できたパスの一覧を返す。
func (c *Client) DownloadAll(ctx context.Context, pageURL, destDir string) ([]string, error) {
	links, err := c.ListWorkbookLinks(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("xlsx リンクが見つかりません: %s", pageURL)
	}

	var saved []string
	for _, link := range links {
		path, err := c.Download(ctx, link, destDir)
		if err != nil {
			log.Printf("Warning: %v", err)
			continue
		}
		log.Printf("Downloaded %s", path)
		saved = append(saved, path)
	}
	return saved, nil
}
