package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-reminder/internal/config"
)

// VCardFetcher downloads the address book of a web source.
type VCardFetcher interface {
	Fetch(ctx context.Context, src config.VCardSettings) (io.ReadCloser, error)
}

// HTTPFetcher downloads CardDAV address books over HTTP(S). The password for
// src.WebUser is resolved through Password at fetch time, so it never sits in
// the settings file.
type HTTPFetcher struct {
	Client   *http.Client
	Password func(user string) string

	// MaxBytes caps the body; a larger book fails instead of being cut short.
	MaxBytes int64
}

// NewHTTPFetcher creates an HTTPFetcher backed by the OS keyring.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: config.HTTPTimeout},
		Password: WebPassword,
		MaxBytes: config.MaxHTTPResponseSize,
	}
}

// Fetch starts the download of src.WebURL. Query parameters are kept out of
// the logs since they may carry tokens.
func (f *HTTPFetcher) Fetch(ctx context.Context, src config.VCardSettings) (io.ReadCloser, error) {
	if src.WebURL == "" {
		return nil, errors.New(config.ErrWebURLEmpty)
	}
	u, err := url.Parse(src.WebURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path,
		config.LogKeyUser, src.WebUser,
	)
	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.WebURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeVCardAccept)

	var pass string
	if src.WebUser != "" && f.Password != nil {
		pass = f.Password(src.WebUser)
	}
	if src.WebUser != "" || pass != "" {
		req.SetBasicAuth(src.WebUser, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchRejected, config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("%s: %s", config.ErrFetchAuth, resp.Status)
	case resp.StatusCode != http.StatusOK:
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchRejected, config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("%s: %s", config.ErrFetchStatus, resp.Status)
	}

	if f.MaxBytes > 0 && resp.ContentLength > f.MaxBytes {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: %d bytes", config.ErrVCardTooLarge, resp.ContentLength)
	}

	log.Info(config.MsgFetchReceiving, config.LogKeySizeBytes, resp.ContentLength)
	return &cappedBody{body: resp.Body, remaining: f.MaxBytes, limited: f.MaxBytes > 0}, nil
}

// cappedBody fails the read that crosses the size limit, so a partial
// address book is never imported as if it were complete.
type cappedBody struct {
	body      io.ReadCloser
	remaining int64
	limited   bool
}

func (c *cappedBody) Read(p []byte) (int, error) {
	if !c.limited {
		return c.body.Read(p)
	}
	if c.remaining <= 0 {
		// One extra byte tells a book of exactly the limit from a larger one.
		var extra [1]byte
		if n, _ := c.body.Read(extra[:]); n > 0 {
			return 0, errors.New(config.ErrVCardTooLarge)
		}
		return 0, io.EOF
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.body.Read(p)
	c.remaining -= int64(n)
	return n, err
}

func (c *cappedBody) Close() error {
	return c.body.Close()
}

// WebPassword returns the CardDAV password stored for user, or "" when the
// keyring has none. A missing entry is normal for anonymous sources.
func WebPassword(user string) string {
	if user == "" {
		return ""
	}
	pass, err := keyring.Get(config.KeyringService, user)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompFetcher,
			config.LogKeyUser, user,
			config.LogKeyError, err)
		return ""
	}
	return pass
}

// StoreWebPassword saves the CardDAV password for user in the OS keyring.
func StoreWebPassword(user, pass string) error {
	if err := keyring.Set(config.KeyringService, user, pass); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringWrite, err)
	}
	return nil
}
