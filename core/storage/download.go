package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"dispatch-console/core/utils"
)

// Progress receives percent-complete updates during a streamed download.
// pct is -1 when the response carries no Content-Length.
type Progress func(pct int)

// Downloader streams attachment bytes from their resolved URL in fixed
// chunks so large evidence files never sit fully in memory.
type Downloader struct {
	client    *http.Client
	chunkSize int
	log       *utils.Logger
}

func NewDownloader(chunkSize int, log *utils.Logger) *Downloader {
	if chunkSize <= 0 {
		chunkSize = 32 * 1024
	}
	if log == nil {
		log = utils.NewLogger()
	}
	return &Downloader{
		client:    &http.Client{Timeout: 5 * time.Minute},
		chunkSize: chunkSize,
		log:       log,
	}
}

// Fetch streams the object at url into dst chunk by chunk, reporting
// percent progress when the server announced a length. It returns the byte
// count written.
func (d *Downloader) Fetch(ctx context.Context, url string, dst io.Writer, progress Progress) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	total := resp.ContentLength
	var written int64
	lastPct := -1
	buf := make([]byte, d.chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			if progress != nil {
				pct := -1
				if total > 0 {
					pct = int(written * 100 / total)
				}
				if pct != lastPct {
					progress(pct)
					lastPct = pct
				}
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// FetchAttachment downloads one resolved attachment. If the signed URL
// fails before any bytes reach dst, it retries once against the raw stored
// path when that path is itself an absolute URL. A mid-stream failure is
// not retried; dst already holds a partial body.
func (d *Downloader) FetchAttachment(ctx context.Context, a Attachment, dst io.Writer, progress Progress) (int64, error) {
	n, err := d.Fetch(ctx, a.URL, dst, progress)
	if err == nil || n > 0 || a.URL == a.Path || !isAbsoluteURL(a.Path) {
		return n, err
	}
	d.log.Errorf("signed download of %q failed, retrying direct: %v", a.Name, err)
	return d.Fetch(ctx, a.Path, dst, progress)
}
