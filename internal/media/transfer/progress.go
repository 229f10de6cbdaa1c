package transfer

import "io"

// progressReader counts bytes as they are consumed and reports percent
// completion of total, offset by done bytes already transferred in
// earlier segments. Reported percent is monotonic and capped at 100.
type progressReader struct {
	r     io.Reader
	done  int64
	total int64
	last  int
	fn    ProgressFunc
}

func newProgressReader(r io.Reader, done, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, done: done, total: total, last: -1, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		if p.fn != nil && p.total > 0 {
			pct := int(p.done * 100 / p.total)
			if pct > 100 {
				pct = 100
			}
			if pct > p.last {
				p.last = pct
				p.fn(pct)
			}
		}
	}
	return n, err
}
