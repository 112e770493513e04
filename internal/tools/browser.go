package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/microcosm-cc/bluemonday"
)

// Browser answers browse_page steps by rendering javascript-heavy pages
// in a headless Chrome instance.
type Browser struct {
	timeout time.Duration
}

func NewBrowser(timeout time.Duration) *Browser {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Browser{timeout: timeout}
}

// Render navigates to pageURL, optionally waits for a CSS selector to be
// visible, and returns the rendered document as sanitized text. Each call
// spawns and tears down its own browser.
func (b *Browser) Render(ctx context.Context, pageURL, selector string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	actions := []chromedp.Action{chromedp.Navigate(pageURL)}
	if selector != "" {
		actions = append(actions, chromedp.WaitVisible(selector, chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}

	var html string
	actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}

	text := bluemonday.StrictPolicy().Sanitize(html)
	if len(text) > maxArticleChars {
		text = text[:maxArticleChars] + "\n... (content truncated) ..."
	}
	return text, nil
}
