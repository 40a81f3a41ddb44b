package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"facebook-extractor/pkg/types"
)

const (
	LookupKindPost = "post"
	LookupKindUser = "user"
)

// Client looks up batches of URLs one at a time over a shared session.
type Client struct {
	posts    *PostScraper
	users    *UserScraper
	limiter  *rate.Limiter
	observer Observer
	logger   *logrus.Logger
}

// NewClient builds a lookup client. A nil limiter disables pacing and a nil
// observer discards lookup reports.
func NewClient(posts *PostScraper, users *UserScraper, limiter *rate.Limiter, observer Observer, logger *logrus.Logger) *Client {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Client{
		posts:    posts,
		users:    users,
		limiter:  limiter,
		observer: observer,
		logger:   logger,
	}
}

// NewLookupLimiter paces page visits at one per interval.
func NewLookupLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// LookupPosts extracts every URL in order. The first failure stops the batch;
// records extracted before it are returned with the error. Cancelling ctx
// takes effect between URLs.
func (c *Client) LookupPosts(ctx context.Context, urls ...string) ([]*types.PostRecord, error) {
	records := make([]*types.PostRecord, 0, len(urls))
	for i, u := range urls {
		if err := c.wait(ctx); err != nil {
			return records, err
		}
		c.logger.WithFields(logrus.Fields{"url": u, "index": i + 1, "total": len(urls)}).Info("Looking up post")

		start := time.Now()
		record, err := c.posts.Parse(context.WithoutCancel(ctx), u)
		sieve := ""
		if record != nil {
			sieve = record.Sieve
		}
		c.observer.ObserveLookup(LookupKindPost, sieve, err, time.Since(start))
		if err != nil {
			return records, fmt.Errorf("failed to look up post %s: %w", u, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// LookupUsers is LookupPosts for profile and page URLs.
func (c *Client) LookupUsers(ctx context.Context, urls ...string) ([]*types.UserRecord, error) {
	records := make([]*types.UserRecord, 0, len(urls))
	for i, u := range urls {
		if err := c.wait(ctx); err != nil {
			return records, err
		}
		c.logger.WithFields(logrus.Fields{"url": u, "index": i + 1, "total": len(urls)}).Info("Looking up user")

		start := time.Now()
		record, err := c.users.Parse(context.WithoutCancel(ctx), u)
		c.observer.ObserveLookup(LookupKindUser, "", err, time.Since(start))
		if err != nil {
			return records, fmt.Errorf("failed to look up user %s: %w", u, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *Client) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.limiter.Wait(ctx)
}
