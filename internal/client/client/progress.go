package client

import "io"

// progressReader reports cumulative bytes read from the wrapped reader.
// The HTTP transport reads the request body as it sends it, so read
// progress tracks transfer progress closely enough for a progress bar.
type progressReader struct {
	r          io.Reader
	total      int64
	uploaded   int64
	onProgress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, onProgress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, onProgress: onProgress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.uploaded += int64(n)
		p.onProgress(p.uploaded, p.total)
	}
	return n, err
}
