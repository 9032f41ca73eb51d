package sources

import (
	"log/slog"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CommentText turns a comment's textDisplay (HTML with entities, <br> and
// links) into text for prompts and review. Entity-only input is unescaped
// directly; markup goes through html-to-markdown, then goquery if that fails.
func CommentText(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(html.UnescapeString(s))
	}

	md, err := htmltomarkdown.ConvertString(s)
	if err == nil {
		return strings.TrimSpace(md)
	}
	slog.Debug("comment text: markdown conversion failed", slog.Any("error", err))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(html.UnescapeString(s))
	}
	doc.Find("br").ReplaceWithHtml("\n")
	return strings.TrimSpace(doc.Text())
}
