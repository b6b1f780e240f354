package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/binary-install/grd/pkg/httpclient"
	"github.com/schollz/progressbar/v3"
)

// ChunkSize is the size of a single read from the response body.
const ChunkSize = 8 * 1024

// ProgressFunc receives the number of bytes written so far after every chunk.
type ProgressFunc func(written int64)

// TransferError is a read or write failure in the middle of a transfer.
// Whatever was written before the failure stays in the destination.
type TransferError struct {
	// Op is "read" or "write"
	Op  string
	Err error
}

func (e *TransferError) Error() string {
	if e.Op == "read" {
		return fmt.Sprintf("error reading stream: %v", e.Err)
	}
	return fmt.Sprintf("could not write to file: %v", e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// FileCreateError is returned when the output file cannot be opened.
type FileCreateError struct {
	Path string
	Err  error
}

func (e *FileCreateError) Error() string {
	return fmt.Sprintf("error creating file %q: %v", e.Path, e.Err)
}

func (e *FileCreateError) Unwrap() error {
	return e.Err
}

// Stream copies src to dst in ChunkSize reads. Every chunk is written before
// the next read and progress, if set, is called with the running total.
// The first read or write error aborts the copy.
func Stream(dst io.Writer, src io.Reader, progress ProgressFunc) (int64, error) {
	var written int64
	buf := make([]byte, ChunkSize)

	for {
		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[:nr])
			if writeErr == nil && nw != nr {
				writeErr = io.ErrShortWrite
			}
			if writeErr != nil {
				return written, &TransferError{Op: "write", Err: writeErr}
			}
			written += int64(nw)

			if progress != nil {
				progress(written)
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, &TransferError{Op: "read", Err: readErr}
		}
	}
}

// NewProgressBar creates the bar drawn during a download. A negative total
// means the size is unknown and a spinner without bound is shown instead.
func NewProgressBar(w io.Writer, total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: "-",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// Save creates the file at path and streams body into it. size is the
// expected length or -1 if unknown. When progressOut is nil no progress is drawn.
// A file that fails mid-stream is left behind as is.
func Save(body io.Reader, size int64, path string, progressOut io.Writer) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, &FileCreateError{Path: path, Err: err}
	}
	defer out.Close()

	var progress ProgressFunc
	var bar *progressbar.ProgressBar
	if progressOut != nil {
		bar = NewProgressBar(progressOut, progressTotal(size), "")
		progress = func(written int64) {
			_ = bar.Set64(written)
		}
	}

	written, err := Stream(out, body, progress)
	if err != nil {
		return written, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := out.Close(); err != nil {
		return written, &TransferError{Op: "write", Err: err}
	}
	return written, nil
}

// progressTotal maps a content length to a bar total. Any negative length is
// unknown and gets a spinner.
func progressTotal(size int64) int64 {
	if size < 0 {
		return -1
	}
	return size
}

// Download fetches url with client and saves the body to path.
func Download(ctx context.Context, client *httpclient.Client, url string, header http.Header, path string, progressOut io.Writer) (int64, error) {
	resp, err := client.Get(ctx, url, header)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return Save(resp.Body, resp.ContentLength, path, progressOut)
}
