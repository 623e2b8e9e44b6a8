package indicator

import "github.com/shopspring/decimal"

// window is a fixed-size ring of the most recent samples with a running sum.
type window struct {
	buf   []decimal.Decimal
	idx   int
	count int
	sum   decimal.Decimal
}

func newWindow(size int) *window {
	return &window{
		buf: make([]decimal.Decimal, size),
		sum: decimal.Zero,
	}
}

// push adds v, evicting the oldest sample once full.
func (w *window) push(v decimal.Decimal) {
	if w.full() {
		w.sum = w.sum.Sub(w.buf[w.idx])
	} else {
		w.count++
	}

	w.buf[w.idx] = v
	w.sum = w.sum.Add(v)
	w.idx = (w.idx + 1) % len(w.buf)
}

func (w *window) full() bool {
	return w.count == len(w.buf)
}

func (w *window) mean() decimal.Decimal {
	if w.count == 0 {
		return decimal.Zero
	}

	return w.sum.Div(decimal.NewFromInt(int64(w.count)))
}

func (w *window) reset() {
	for i := range w.buf {
		w.buf[i] = decimal.Zero
	}

	w.idx = 0
	w.count = 0
	w.sum = decimal.Zero
}
