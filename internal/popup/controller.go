// Package popup is the summarizer's front-end logic, independent of how it is
// drawn: it loads and saves settings, prefills the paper URL from the active
// page, and runs one create-then-poll submission at a time.
package popup

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arxivsum/cli/internal/api"
	"github.com/arxivsum/cli/internal/settings"
	"github.com/arxivsum/cli/internal/tab"
	"github.com/pterm/pterm"
)

const (
	DefaultPollInterval     = 10 * time.Second
	DefaultMaxAttempts      = 24
	DefaultStatusClearDelay = 2 * time.Second

	// DefaultTriggerLabel is the submit control's idle label.
	DefaultTriggerLabel = "Generate Summary"
	// BusyTriggerLabel is shown while a submission runs.
	BusyTriggerLabel = "Generating..."
	// SavedStatus confirms a settings save.
	SavedStatus = "Settings saved!"
)

// Controller owns the popup's state for as long as it is open.
type Controller struct {
	store settings.Store
	tabs  tab.Source
	view  View

	pollInterval     time.Duration
	maxAttempts      int
	statusClearDelay time.Duration
	httpClient       *http.Client
	sleep            func(ctx context.Context, d time.Duration) error
	now              func() time.Time

	timer *elapsedTimer
	busy  atomic.Bool

	mu              sync.Mutex
	form            Form
	settingsVisible bool
	statusTimer     *time.Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithPollInterval sets the delay before each poll.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) { c.pollInterval = d }
}

// WithMaxAttempts caps the number of polls per submission.
func WithMaxAttempts(n int) Option {
	return func(c *Controller) { c.maxAttempts = n }
}

// WithStatusClearDelay sets how long the save confirmation stays visible.
func WithStatusClearDelay(d time.Duration) Option {
	return func(c *Controller) { c.statusClearDelay = d }
}

// WithTimerTick sets the elapsed display's refresh period.
func WithTimerTick(d time.Duration) Option {
	return func(c *Controller) { c.timer.tick = d }
}

// WithHTTPClient sets the client used for create and poll calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Controller) { c.httpClient = hc }
}

// WithSleep replaces the poll delay, e.g. to skip waiting in tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Controller) { c.sleep = sleep }
}

func New(store settings.Store, tabs tab.Source, view View, opts ...Option) *Controller {
	c := &Controller{
		store:            store,
		tabs:             tabs,
		view:             view,
		pollInterval:     DefaultPollInterval,
		maxAttempts:      DefaultMaxAttempts,
		statusClearDelay: DefaultStatusClearDelay,
		sleep:            sleepContext,
		now:              time.Now,
	}
	c.timer = newElapsedTimer(time.Second, func() time.Time { return c.now() })
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Form returns the current input values.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SettingsVisible reports whether the settings panel is shown.
func (c *Controller) SettingsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settingsVisible
}

// Load fills the form from stored settings and the active page. The settings
// panel is forced open when either setting is missing.
func (c *Controller) Load(ctx context.Context) error {
	s, err := c.store.Load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if s.APIKey != "" {
		c.form.APIKey = s.APIKey
	}
	if s.APIURL != "" {
		c.form.APIURL = s.APIURL
	}
	force := !s.Complete()
	if force {
		c.settingsVisible = true
	}
	c.mu.Unlock()

	if force {
		c.view.SettingsVisible(true)
	}

	if c.tabs == nil {
		return nil
	}
	current, err := c.tabs.ActiveURL(ctx)
	if err != nil {
		pterm.Debug.Printf("Could not read active tab: %v\n", err)
		return nil
	}
	if tab.IsArxiv(current) {
		c.mu.Lock()
		c.form.ArxivURL = current
		c.mu.Unlock()
	}
	return nil
}

// ToggleSettings flips the settings panel's visibility.
func (c *Controller) ToggleSettings() bool {
	c.mu.Lock()
	c.settingsVisible = !c.settingsVisible
	visible := c.settingsVisible
	c.mu.Unlock()

	c.view.SettingsVisible(visible)
	return visible
}

// SaveSettings persists both values, shows a confirmation that clears itself
// after the status delay, and hides the settings panel.
func (c *Controller) SaveSettings(ctx context.Context, apiKey, apiURL string) error {
	if err := c.store.Save(ctx, settings.Settings{APIKey: apiKey, APIURL: apiURL}); err != nil {
		return err
	}

	c.mu.Lock()
	c.form.APIKey = apiKey
	c.form.APIURL = apiURL
	c.settingsVisible = false
	if c.statusTimer != nil {
		c.statusTimer.Stop()
	}
	c.statusTimer = time.AfterFunc(c.statusClearDelay, func() { c.view.Status("") })
	c.mu.Unlock()

	c.view.Status(SavedStatus)
	c.view.SettingsVisible(false)
	return nil
}

// Submit runs one summarization: create, poll until done, open the result.
// Failures are shown through View.Alert and also returned. The trigger and
// elapsed display are restored on every exit path.
func (c *Controller) Submit(ctx context.Context, arxivURL string) error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrInProgress
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	c.form.ArxivURL = arxivURL
	c.mu.Unlock()

	c.view.Trigger(false, BusyTriggerLabel)
	defer func() {
		c.timer.Stop()
		c.view.Elapsed("")
		c.view.Trigger(true, DefaultTriggerLabel)
	}()

	if err := c.summarize(ctx, arxivURL); err != nil {
		pterm.Debug.Printf("Error details: %+v\n", err)
		c.view.Alert(AlertPrefix + err.Error())
		return err
	}
	return nil
}

func (c *Controller) summarize(ctx context.Context, arxivURL string) error {
	creds, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if !creds.Complete() {
		return MissingCredentialsError{}
	}

	c.timer.Start(c.view.Elapsed)

	client := api.NewClient(creds.APIURL, creds.APIKey, api.WithHTTPClient(c.httpClient))
	requestID, err := client.Create(ctx, arxivURL)
	if err != nil {
		return err
	}
	pterm.Debug.Printf("Created request %s for %s\n", requestID, arxivURL)

	started := c.now()
	for attempts := 0; attempts < c.maxAttempts; {
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return err
		}

		resp, err := client.Poll(ctx, requestID)
		if err != nil {
			return err
		}

		switch {
		case resp.Pending():
			attempts++
		case resp.Done():
			return c.view.Open(resp.HTML)
		default:
			// Neither pending nor done still spends an attempt so the loop stays bounded.
			pterm.Debug.Printf("Unrecognized poll response for %s: status=%q\n", requestID, resp.Status)
			attempts++
		}
	}

	return &TimeoutError{Attempts: c.maxAttempts, Waited: c.now().Sub(started)}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
