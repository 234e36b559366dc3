// Package chromebrowser provides the frame capture surface using chromedp.
package chromebrowser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/RaaSaaR-org/vidgen/pkg/ports"
)

// Browser implements ports.Browser using chromedp. Each NewTab call opens
// an isolated target in the shared Chrome process so scene captures can
// run in parallel.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	width  int
	height int

	mu   sync.Mutex
	tabs []*tab
}

// New creates an unlaunched Browser.
func New() *Browser {
	return &Browser{}
}

// Launch starts Chrome with the given viewport. The browser stays up until
// Close; one Browser serves all scenes of a single output format.
func (b *Browser) Launch(ctx context.Context, opts ports.BrowserOptions) error {
	chromedpOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("force-device-scale-factor", "1"),
		chromedp.WindowSize(opts.Width, opts.Height),
	}

	if opts.Headless {
		chromedpOpts = append(chromedpOpts, chromedp.Flag("headless", "new"))
	}

	chromePath := ResolveChromePath(opts.ChromePath)
	if chromePath == "" {
		return fmt.Errorf("chrome not found: install Chrome/Chromium, set CHROME_PATH, or use --chrome-path")
	}
	chromedpOpts = append(chromedpOpts, chromedp.ExecPath(chromePath))

	b.width = opts.Width
	b.height = opts.Height

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(ctx, chromedpOpts...)
	b.ctx, b.cancel = chromedp.NewContext(b.allocCtx)

	// Force the first target into existence now so launch errors surface
	// here instead of inside the first scene capture.
	if err := chromedp.Run(b.ctx); err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}
	return nil
}

// NewTab opens an independent page sized to the format's viewport.
func (b *Browser) NewTab(ctx context.Context) (ports.Tab, error) {
	if b.ctx == nil {
		return nil, fmt.Errorf("browser not launched")
	}

	tabCtx, tabCancel := chromedp.NewContext(b.ctx)
	if err := chromedp.Run(tabCtx,
		emulation.SetDeviceMetricsOverride(int64(b.width), int64(b.height), 1, false),
	); err != nil {
		tabCancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	t := &tab{ctx: tabCtx, cancel: tabCancel}
	b.mu.Lock()
	b.tabs = append(b.tabs, t)
	b.mu.Unlock()
	return t, nil
}

// Close shuts down the browser and every remaining tab.
func (b *Browser) Close() error {
	b.mu.Lock()
	tabs := b.tabs
	b.tabs = nil
	b.mu.Unlock()

	for _, t := range tabs {
		t.Close()
	}
	if b.cancel != nil {
		b.cancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	return nil
}

// tab implements ports.Tab on one chromedp target.
type tab struct {
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

// SetContent replaces the page document with the given HTML.
func (t *tab) SetContent(ctx context.Context, html string) error {
	err := chromedp.Run(t.ctx, chromedp.ActionFunc(func(cctx context.Context) error {
		tree, err := page.GetFrameTree().Do(cctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(cctx)
	}))
	if err != nil {
		return fmt.Errorf("set content: %w", err)
	}
	return nil
}

// SetAnimationState pushes the frame signals into the live page as CSS
// custom properties on the document root, plus a DOM event for scripts.
func (t *tab) SetAnimationState(ctx context.Context, state ports.AnimationState) error {
	script := fmt.Sprintf(`(function() {
		const root = document.documentElement;
		root.style.setProperty('--frame', '%d');
		root.style.setProperty('--total-frames', '%d');
		root.style.setProperty('--progress', '%.6f');
		root.style.setProperty('--content-progress', '%.6f');
		document.dispatchEvent(new CustomEvent('animationframe', { detail: {
			frame: %d,
			totalFrames: %d,
			progress: %.6f,
			contentProgress: %.6f
		}}));
	})()`,
		state.Frame, state.TotalFrames, state.Progress, state.ContentProgress,
		state.Frame, state.TotalFrames, state.Progress, state.ContentProgress)

	if err := chromedp.Run(t.ctx, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("set animation state: %w", err)
	}
	return nil
}

// Screenshot captures the viewport as PNG bytes.
func (t *tab) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(t.ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

// Close tears down the tab's target. Idempotent.
func (t *tab) Close() error {
	t.closeOnce.Do(func() {
		if t.cancel != nil {
			t.cancel()
		}
	})
	return nil
}

var _ ports.Browser = (*Browser)(nil)
var _ ports.Tab = (*tab)(nil)
