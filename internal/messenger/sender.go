package messenger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"opsreports/internal/config"
	apperrors "opsreports/internal/errors"
	"opsreports/internal/infrastructure"
)

// WhatsApp Web element locators (Spanish UI).
const (
	searchBoxXPath  = `//div[@contenteditable='true'][@data-tab='3']`
	attachXPath     = `//button[@title='Adjuntar' and @type='button']`
	fileInputXPath  = `//input[@accept='image/*,video/mp4,video/3gpp,video/quicktime']`
	captionXPath    = `//div[@contenteditable='true' and @aria-label='Añade un comentario']`
	sendButtonXPath = `//div[@role='button' and @aria-label='Enviar']`
)

// Browser runs a task list in a fresh browser session.
type Browser interface {
	Run(ctx context.Context, tasks chromedp.Tasks) error
}

// ChromeBrowser starts a Chrome process per Run.
type ChromeBrowser struct {
	opts []chromedp.ExecAllocatorOption
}

// NewChromeBrowser builds allocator options from the messenger config.
func NewChromeBrowser(cfg config.MessengerConfig) *ChromeBrowser {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("start-maximized", true),
	)
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	return &ChromeBrowser{opts: opts}
}

// Run executes tasks in a new tab and closes the browser afterwards.
func (b *ChromeBrowser) Run(ctx context.Context, tasks chromedp.Tasks) error {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, b.opts...)
	defer cancel()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	return chromedp.Run(tabCtx, tasks)
}

// Sender posts chart attachments into WhatsApp groups.
type Sender struct {
	cfg     config.MessengerConfig
	browser Browser
	logger  *slog.Logger
	metrics *infrastructure.Metrics
}

// NewSender creates a sender. A nil browser uses Chrome; nil metrics are ignored.
func NewSender(cfg config.MessengerConfig, browser Browser, metrics *infrastructure.Metrics, logger *slog.Logger) *Sender {
	if browser == nil {
		browser = NewChromeBrowser(cfg)
	}
	return &Sender{
		cfg:     cfg,
		browser: browser,
		logger:  infrastructure.WithComponent(logger, "messenger"),
		metrics: metrics,
	}
}

// SendAll sends the attachments to every group in order. A failing group
// does not stop the others; all failures are joined.
func (s *Sender) SendAll(ctx context.Context, groups []string, attachments []Attachment) error {
	var errs []error
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.Send(ctx, group, attachments); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Send opens WhatsApp Web, selects group and posts each attachment.
func (s *Sender) Send(ctx context.Context, group string, attachments []Attachment) error {
	if len(attachments) == 0 {
		s.logger.WarnContext(ctx, "nothing to send", slog.String("group", group))
		return nil
	}

	start := time.Now()
	s.logger.InfoContext(ctx, "opening group",
		slog.String("group", group),
		slog.Int("attachments", len(attachments)))

	err := s.browser.Run(ctx, s.groupTasks(group, attachments))
	s.metrics.ObserveMessage(group, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "send failed",
			slog.String("group", group),
			slog.String("error", err.Error()))
		return apperrors.NewBrowserError(fmt.Sprintf("failed to send to group %q", group), err).
			WithContext("group", group)
	}

	s.logger.InfoContext(ctx, "reports sent",
		slog.String("group", group),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (s *Sender) groupTasks(group string, attachments []Attachment) chromedp.Tasks {
	tasks := chromedp.Tasks{
		chromedp.Navigate(s.cfg.PageURL),
		s.step("wait for page", s.cfg.LoadTimeout, chromedp.WaitVisible(searchBoxXPath, chromedp.BySearch)),
		chromedp.Sleep(s.cfg.RenderWait),
		s.step("search group", s.cfg.ElementTimeout, chromedp.Click(searchBoxXPath, chromedp.BySearch)),
		chromedp.Sleep(time.Second),
		chromedp.SendKeys(searchBoxXPath, group, chromedp.BySearch),
		chromedp.Sleep(s.cfg.StepWait),
		s.step("open group", s.cfg.ElementTimeout, chromedp.Click(groupXPath(group), chromedp.BySearch)),
		chromedp.Sleep(s.cfg.StepWait),
	}

	for _, a := range attachments {
		tasks = append(tasks, s.attachmentTasks(a)...)
	}
	return tasks
}

func (s *Sender) attachmentTasks(a Attachment) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			s.logger.InfoContext(ctx, "uploading chart", slog.String("file", a.Name))
			return nil
		}),
		s.step("attach", s.cfg.ElementTimeout, chromedp.Click(attachXPath, chromedp.BySearch, chromedp.NodeVisible)),
		chromedp.Sleep(2 * time.Second),
		s.step("upload "+a.Name, s.cfg.ElementTimeout, chromedp.SetUploadFiles(fileInputXPath, []string{a.Path}, chromedp.BySearch, chromedp.NodeReady)),
		chromedp.Sleep(s.cfg.StepWait),
		s.step("caption", s.cfg.ElementTimeout, chromedp.SendKeys(captionXPath, a.Caption, chromedp.BySearch)),
		s.step("send", s.cfg.ElementTimeout, chromedp.Click(sendButtonXPath, chromedp.BySearch, chromedp.NodeVisible)),
		chromedp.Sleep(s.cfg.StepWait),
	}
}

// step bounds an action with timeout and names it in the returned error.
func (s *Sender) step(name string, timeout time.Duration, action chromedp.Action) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := action.Do(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

func groupXPath(group string) string {
	return fmt.Sprintf("//span[@title=%s]", xpathLiteral(group))
}
