package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/containrrr/shoutrrr"
)

// ShoutrrrTransport posts each item to every configured Shoutrrr URL (ntfy,
// Discord, generic webhooks, ...). An item counts as delivered only when
// every URL accepted it.
type ShoutrrrTransport struct {
	URLs []string

	// send is shoutrrr.Send; tests replace it.
	send func(url, message string) error
}

// NewShoutrrrTransport parses a comma- or newline-separated URL list.
func NewShoutrrrTransport(urls ...string) *ShoutrrrTransport {
	var parsed []string
	for _, u := range urls {
		parsed = append(parsed, parseURLs(u)...)
	}
	return &ShoutrrrTransport{URLs: parsed, send: shoutrrr.Send}
}

// Deliver implements Transport.
func (t *ShoutrrrTransport) Deliver(ctx context.Context, item Item) error {
	if len(t.URLs) == 0 {
		return errors.New("syncqueue: no shoutrrr urls configured")
	}
	body := buildBody(item)
	var errs []error
	for _, u := range t.URLs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.send(u, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", maskURL(u), err))
		}
	}
	return errors.Join(errs...)
}

// buildBody renders an item as a message.
func buildBody(item Item) string {
	return fmt.Sprintf("repcal progress %s\n%s", item.Key, item.Payload)
}

// parseURLs splits a comma-or-newline-separated URL string and trims whitespace.
func parseURLs(urlsStr string) []string {
	urlsStr = strings.ReplaceAll(urlsStr, "\n", ",")
	var urls []string
	for _, p := range strings.Split(urlsStr, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}

// maskURL hides credentials in a Shoutrrr URL for logging.
func maskURL(u string) string {
	if len(u) <= 5 {
		return "••••"
	}
	if len(u) <= 15 {
		return u[:5] + "••••"
	}
	return u[:15] + "••••"
}
