// Package revalidate tells the front end to rebuild statically generated
// pages after content changes.
package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/logger"
)

const requestTimeout = 10 * time.Second

type Notifier interface {
	// Trigger asks the front end to revalidate paths. It does not block.
	Trigger(paths ...string)
}

type webhook struct {
	url    string
	secret string
	client *http.Client
	log    *logger.Logger
}

// New returns a webhook notifier, or a no-op notifier when url is empty.
func New(url, secret string, log *logger.Logger) Notifier {
	if log == nil {
		log = logger.Nop()
	}
	if url == "" {
		log.Info("NEXT_REVALIDATION_URL is not set; revalidation disabled")
		return Nop{}
	}
	return &webhook{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: requestTimeout},
		log:    log.With("service", "Revalidation"),
	}
}

func (w *webhook) Trigger(paths ...string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := w.Send(ctx, paths...); err != nil {
			w.log.Warn("Revalidation failed", "error", err, "paths", paths)
			return
		}
		w.log.Debug("Revalidation triggered", "paths", paths)
	}()
}

type statusError int

func (s statusError) Error() string { return "revalidation returned " + http.StatusText(int(s)) }

// Send posts the revalidation request synchronously.
func (w *webhook) Send(ctx context.Context, paths ...string) error {
	payload, err := json.Marshal(map[string]any{
		"secret": w.secret,
		"paths":  paths,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode)
	}
	return nil
}

type Nop struct{}

func (Nop) Trigger(...string) {}
