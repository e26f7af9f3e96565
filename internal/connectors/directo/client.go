package directo

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/logger"
)

// tsFilterLayout is the DD.MM.YYYY format the export API expects for
// the ts filter parameter.
const tsFilterLayout = "02.01.2006"

// client talks to the Directo XML export API. All exports go through
// one form-POST endpoint; the entity is selected with the "what"
// parameter.
type client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

func newClient(cfg Config) *client {
	return &client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.timeout()},
		limiter: rate.NewLimiter(
			rate.Limit(cfg.requestsPerSecond()), 1),
	}
}

// fetch requests one entity export and parses the response into raw
// records, one per row element. Row fields arrive as XML attributes.
func (c *client) fetch(ctx context.Context, entity domain.EntityType, from time.Time) ([]domain.RawRecord, error) {
	form := url.Values{
		"token": {c.cfg.Token},
		"get":   {"1"},
		"what":  {entity.APIName()},
	}
	if !from.IsZero() {
		form.Set("ts", from.Format(tsFilterLayout))
	}

	body, err := c.post(ctx, form)
	if err != nil {
		return nil, err
	}
	return parseExport(body, entity)
}

// post sends the form with rate limiting and retries. Transport errors
// and 5xx responses are retried with linear backoff; everything else is
// returned as-is.
func (c *client) post(ctx context.Context, form url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.retryMax(); attempt++ {
		if attempt > 0 {
			logger.Debug("directo: retrying request (attempt %d/%d): %v",
				attempt, c.cfg.retryMax(), lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.endpoint(), strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response: %w", err)
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", resp.Status)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status: %s", resp.Status)
		}
		return body, nil
	}
	return nil, fmt.Errorf("request failed after %d retries: %w",
		c.cfg.retryMax(), lastErr)
}

// parseExport walks the XML token stream. The document root names the
// outcome: an <err> root is an API error, and a <result> element with
// type="5" means the token was rejected. The API emits the <result>
// either as the document root itself or nested under a normal export
// root, so both depths are checked. Row elements are children of the
// root; their attributes are the record fields.
func parseExport(body []byte, entity domain.EntityType) ([]domain.RawRecord, error) {
	dec := xml.NewDecoder(strings.NewReader(string(body)))

	var records []domain.RawRecord
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s export: %w", entity, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			name := strings.ToLower(el.Name.Local)
			if depth == 1 {
				switch name {
				case "err":
					return nil, apiError(dec, el)
				case "result":
					if err := resultError(el); err != nil {
						return nil, err
					}
				}
				continue
			}
			if depth != 2 {
				continue
			}
			if name == "result" {
				if err := resultError(el); err != nil {
					return nil, err
				}
				continue
			}
			raw := make(domain.RawRecord, len(el.Attr))
			for _, attr := range el.Attr {
				raw[strings.ToLower(attr.Name.Local)] = attr.Value
			}
			records = append(records, raw)

		case xml.EndElement:
			depth--
		}
	}
	return records, nil
}

// apiError extracts the message from an <err> document.
func apiError(dec *xml.Decoder, start xml.StartElement) error {
	var payload struct {
		Desc    string `xml:"desc,attr"`
		Message string `xml:",chardata"`
	}
	if err := dec.DecodeElement(&payload, &start); err != nil {
		return fmt.Errorf("API error (unparseable detail): %w", err)
	}
	msg := payload.Desc
	if msg == "" {
		msg = strings.TrimSpace(payload.Message)
	}
	if msg == "" {
		msg = "unspecified error"
	}
	return fmt.Errorf("API error: %s", msg)
}

// resultError inspects a <result> status element. Type 5 means the
// token was rejected, which is fatal for the whole run.
func resultError(el xml.StartElement) error {
	for _, attr := range el.Attr {
		if strings.ToLower(attr.Name.Local) != "type" {
			continue
		}
		if attr.Value == "5" {
			return fmt.Errorf("%w: API token rejected", domain.ErrAuthFailed)
		}
	}
	return nil
}
