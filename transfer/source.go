package transfer

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
)

const (
	// UploadChunkSize is the read size used for sources that cannot seek
	UploadChunkSize = 64 * 1024
	// DownloadChunkSize is the write size used when streaming a download
	DownloadChunkSize = 8 * 1024
)

// Source is where uploaded bytes come from. Use FromPath, FromReader,
// FromBytes or FromGenerator.
type Source struct {
	path      string
	reader    io.Reader
	generator func() (io.Reader, error)
}

// FromPath uploads a local file. The file is opened and closed by the upload.
func FromPath(path string) Source {
	return Source{path: path}
}

// FromReader uploads from r. r is not closed. When r can seek, every
// attempt restarts from r's position at the time of the call.
func FromReader(r io.Reader) Source {
	return Source{reader: r}
}

// FromBytes uploads an in-memory buffer
func FromBytes(b []byte) Source {
	return Source{reader: bytes.NewReader(b)}
}

// FromGenerator calls fn for a fresh reader on every attempt
func FromGenerator(fn func() (io.Reader, error)) Source {
	return Source{generator: fn}
}

func (s Source) validate() error {
	if s.path == "" && s.reader == nil && s.generator == nil {
		return errors.New("transfer: empty source")
	}
	return nil
}

// Destination is where downloaded bytes go. Use ToPath or ToWriter.
type Destination struct {
	path   string
	writer io.Writer
}

// ToPath downloads into a local file, created or truncated by the download
func ToPath(path string) Destination {
	return Destination{path: path}
}

// ToWriter downloads into w. w is not closed. When w can seek, every
// attempt restarts from w's position at the time of the call.
func ToWriter(w io.Writer) Destination {
	return Destination{writer: w}
}

func (d Destination) validate() error {
	if d.path == "" && d.writer == nil {
		return errors.New("transfer: empty destination")
	}
	return nil
}

// probeSeek reports whether v can seek and its current position.
// Pipes and terminals implement io.Seeker but fail the probe.
func probeSeek(v any) (io.Seeker, int64, bool) {
	seeker, ok := v.(io.Seeker)
	if !ok {
		return nil, 0, false
	}
	pos, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, false
	}
	return seeker, pos, true
}

// remaining returns the number of bytes between pos and the end, restoring pos.
// It returns 0 when the size cannot be determined.
func remaining(seeker io.Seeker, pos int64) int64 {
	if f, ok := seeker.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
			return max(info.Size()-pos, 0)
		}
		return 0
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0
	}
	if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
		return 0
	}
	return max(end-pos, 0)
}

// onlyReader hides every method but Read, so the transport neither closes
// nor seeks a caller's reader.
type onlyReader struct {
	io.Reader
}

// chunked reads a non-seekable source in UploadChunkSize pieces
func chunked(r io.Reader) io.Reader {
	return onlyReader{bufio.NewReaderSize(r, UploadChunkSize)}
}

// chunkWriter returns a consume func writing to w
func chunkWriter(w io.Writer) func([]byte) error {
	return func(b []byte) error {
		for len(b) > 0 {
			n := min(len(b), DownloadChunkSize)
			if _, err := w.Write(b[:n]); err != nil {
				return err
			}
			b = b[n:]
		}
		return nil
	}
}
