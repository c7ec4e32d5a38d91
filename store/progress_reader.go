package store

import "io"

// progressReader reports cumulative bytes read to an observer.
type progressReader struct {
	r           io.Reader
	total       int64
	transferred int64
	onProgress  ProgressFunc
}

func newProgressReader(r io.Reader, total int64, onProgress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, onProgress: onProgress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.transferred += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.transferred, p.total)
		}
	}
	return n, err
}

// progressReadSeeker wraps a seekable body so the SDK can rewind it for
// signing and retries. A rewind to the start resets the counter instead of
// double-counting.
type progressReadSeeker struct {
	rs          io.ReadSeeker
	total       int64
	transferred int64
	onProgress  ProgressFunc
}

func newProgressReadSeeker(rs io.ReadSeeker, total int64, onProgress ProgressFunc) *progressReadSeeker {
	return &progressReadSeeker{rs: rs, total: total, onProgress: onProgress}
}

func (p *progressReadSeeker) Read(b []byte) (int, error) {
	n, err := p.rs.Read(b)
	if n > 0 {
		p.transferred += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.transferred, p.total)
		}
	}
	return n, err
}

func (p *progressReadSeeker) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.rs.Seek(offset, whence)
	if err == nil {
		p.transferred = pos
	}
	return pos, err
}
