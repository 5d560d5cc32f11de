package fetch

import (
	"context"
	"fmt"
	"os"
)

// FeedClient fetches the raw feed text over HTTP.
// It implements pipeline.FeedSource.
type FeedClient struct {
	client *Client
	url    string
}

// NewFeedClient creates a feed source for url.
func NewFeedClient(client *Client, url string) *FeedClient {
	return &FeedClient{client: client, url: url}
}

func (f *FeedClient) FetchFeed(ctx context.Context) (string, error) {
	body, err := f.client.Get(ctx, f.url)
	if err != nil {
		return "", fmt.Errorf("fetch feed: %w", err)
	}
	return string(body), nil
}

// FileFeed reads the raw feed text from a local file.
type FileFeed struct {
	path string
}

// NewFileFeed creates a feed source reading path on every fetch.
func NewFileFeed(path string) *FileFeed {
	return &FileFeed{path: path}
}

func (f *FileFeed) FetchFeed(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("read feed file: %w", err)
	}
	return string(data), nil
}
