package newscascade

import (
	"context"
	"sync"
)

var (
	defaultOnce   sync.Once
	defaultClient *Client
	defaultErr    error
)

func shared() (*Client, error) {
	defaultOnce.Do(func() {
		defaultClient, defaultErr = New()
	})
	return defaultClient, defaultErr
}

func latest(category string) *Result {
	c, err := shared()
	if err != nil {
		return &Result{News: []NewsRecord{}, Statistics: Statistics{Error: err.Error()}}
	}
	return c.LatestNews(context.Background(), category)
}

func fullText(url string) string {
	c, err := shared()
	if err != nil {
		return ""
	}
	return c.FullArticleText(context.Background(), url)
}

func preview(url string, length int) string {
	c, err := shared()
	if err != nil {
		return ""
	}
	return c.ArticlePreview(context.Background(), url, length)
}

// LatestPolitics returns the latest politics news using a default client.
func LatestPolitics() *Result { return latest(Politics) }

// FullTextPolitics returns the text of a politics article.
func FullTextPolitics(url string) string { return fullText(url) }

// PreviewPolitics returns a preview of a politics article.
func PreviewPolitics(url string, length int) string { return preview(url, length) }

// LatestScience returns the latest science news using a default client.
func LatestScience() *Result { return latest(Science) }

// FullTextScience returns the text of a science article.
func FullTextScience(url string) string { return fullText(url) }

// PreviewScience returns a preview of a science article.
func PreviewScience(url string, length int) string { return preview(url, length) }

// LatestHealth returns the latest health news using a default client.
func LatestHealth() *Result { return latest(Health) }

// FullTextHealth returns the text of a health article.
func FullTextHealth(url string) string { return fullText(url) }

// PreviewHealth returns a preview of a health article.
func PreviewHealth(url string, length int) string { return preview(url, length) }
