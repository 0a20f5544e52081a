// Package transfer moves file contents to and from signed transfer links.
//
// An upload or download is two steps: obtain a link from the API, then PUT
// or GET the bytes. The whole sequence runs under the retry engine. When the
// local side can seek, a failed attempt rewinds it and starts over with a
// fresh link. When it cannot, the bytes already consumed are gone, so the
// transfer step gets no retries and the link step takes the whole budget
// instead. This is a best-effort policy: it avoids replaying a partial
// stream, not every partial write on the remote side.
package transfer

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"os"

	"github.com/ivknv/yadisk-go/logger"
	"github.com/ivknv/yadisk-go/request"
	"github.com/ivknv/yadisk-go/retry"
)

// LinkFunc obtains a transfer link. opts carry the link step's own budget.
type LinkFunc func(ctx context.Context, opts request.Options) (string, error)

// FixedLink returns a LinkFunc for a link that is already known
func FixedLink(href string) LinkFunc {
	return func(context.Context, request.Options) (string, error) {
		return href, nil
	}
}

// budget splits the retry count between the transfer and the link step
type budget struct {
	transfer int
	link     int
}

func splitBudget(n int, replayable bool) budget {
	if replayable {
		return budget{transfer: n}
	}
	return budget{link: n}
}

// linkOptions are the options of the link step: its own budget and no pause
func linkOptions(opts request.Options, b budget) request.Options {
	return opts.With(request.WithRetries(b.link), request.WithRetryInterval(0))
}

// transferOptions drop the extra query parameters meant for the API
func transferOptions(opts request.Options) request.Options {
	opts = opts.With()
	opts.Params = nil
	return opts
}

func log(d *request.Dispatcher) logger.Logger {
	if d.Logger == nil {
		return logger.Nop()
	}
	return d.Logger
}

// Upload sends src to dstPath. d.Defaults should carry the upload timeout
// and retry interval.
func Upload(ctx context.Context, d *request.Dispatcher, getLink LinkFunc, src Source, dstPath string, opts request.Options) error {
	if err := src.validate(); err != nil {
		return err
	}
	resolved := opts.Resolve(d.Defaults)
	ctx = request.Begin(ctx)

	reader := src.reader
	if src.path != "" {
		f, err := os.Open(src.path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", src.path, err)
		}
		defer f.Close()
		reader = f
	}

	var (
		seeker io.Seeker
		pos    int64
		size   int64
	)
	replayable := src.generator != nil
	if reader != nil {
		var ok bool
		if seeker, pos, ok = probeSeek(reader); ok {
			replayable = true
			size = remaining(seeker, pos)
		}
	}
	b := splitBudget(resolved.NRetries, replayable)

	headers := nethttp.Header{}
	headers.Set("Connection", "close")
	headers.Set("Content-Type", "application/octet-stream")

	policy := resolved.Policy(log(d))
	policy.MaxRetries = b.transfer

	return retry.Run(ctx, policy, func(ctx context.Context) error {
		link, err := getLink(ctx, linkOptions(opts, b))
		if err != nil {
			return err
		}

		req := &request.Request[struct{}]{
			Method:       nethttp.MethodPut,
			URL:          link,
			Headers:      headers,
			SuccessCodes: []int{nethttp.StatusCreated},
			Options:      transferOptions(opts),
		}

		switch {
		case src.generator != nil:
			body, err := src.generator()
			if err != nil {
				return err
			}
			if c, ok := body.(io.Closer); ok {
				defer c.Close()
			}
			req.Body = body
		case seeker != nil:
			// also called by the transport to resend the body after a 307 or 308
			req.Body = request.BodyFunc(func() (io.Reader, error) {
				if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
					return nil, fmt.Errorf("failed to rewind upload source: %w", err)
				}
				return onlyReader{reader}, nil
			})
			req.ContentLength = size
		default:
			req.Body = chunked(reader)
		}

		log(d).Info().
			Str("path", dstPath).
			Str("link", Redact(link)).
			Msgf("uploading file to %s at %s", dstPath, Redact(link))

		_, err = req.Attempt(ctx, d)
		return err
	})
}

// Download writes the contents of srcPath to dst
func Download(ctx context.Context, d *request.Dispatcher, getLink LinkFunc, srcPath string, dst Destination, opts request.Options) (err error) {
	if err := dst.validate(); err != nil {
		return err
	}
	resolved := opts.Resolve(d.Defaults)
	ctx = request.Begin(ctx)

	writer := dst.writer
	var created *os.File
	if dst.path != "" {
		f, err := os.Create(dst.path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", dst.path, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		created = f
		writer = f
	}

	seeker, pos, seekable := probeSeek(writer)
	b := splitBudget(resolved.NRetries, seekable)

	policy := resolved.Policy(log(d))
	policy.MaxRetries = b.transfer

	consume := chunkWriter(writer)

	return retry.Run(ctx, policy, func(ctx context.Context) error {
		link, err := getLink(ctx, linkOptions(opts, b))
		if err != nil {
			return err
		}

		if seekable {
			if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
				return fmt.Errorf("failed to rewind download destination: %w", err)
			}
			if created != nil {
				if err := created.Truncate(pos); err != nil {
					return fmt.Errorf("failed to truncate %s: %w", dst.path, err)
				}
			}
		}

		log(d).Info().
			Str("path", srcPath).
			Str("link", Redact(link)).
			Msgf("downloading file %s from %s", srcPath, Redact(link))

		req := &request.Request[struct{}]{
			Method:       nethttp.MethodGet,
			URL:          link,
			Stream:       true,
			SuccessCodes: []int{nethttp.StatusOK},
			Options:      transferOptions(opts),
			Process: func(_ context.Context, r request.Result) (struct{}, error) {
				return struct{}{}, r.Response.Download(consume)
			},
		}
		_, err = req.Attempt(ctx, d)
		return err
	})
}

// Redact drops the query of a signed link
func Redact(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "<invalid link>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
