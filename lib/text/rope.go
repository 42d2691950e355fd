package text

import (
	"fmt"
	"iter"
	"strings"

	"github.com/benz9527/xllrb/lib/tree"
)

// Rope is an immutable-fragment string. Each fragment is stored under
// its starting byte offset, so the fragment holding an offset is the
// floor of that offset.
type Rope struct {
	fragments tree.LLRBTree[int64, string]
	length    int64
}

func NewRope(fragments ...string) *Rope {
	r := &Rope{
		fragments: tree.NewLLRBTree[int64, string](),
	}
	for _, s := range fragments {
		r.Append(s)
	}
	return r
}

// Append ignores empty fragments.
func (r *Rope) Append(s string) {
	if len(s) == 0 {
		return
	}
	r.fragments.Insert(r.length, s)
	r.length += int64(len(s))
}

// Len returns the length in bytes.
func (r *Rope) Len() int64 {
	return r.length
}

func (r *Rope) Fragments() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range r.fragments.All() {
			if !yield(s) {
				return
			}
		}
	}
}

func (r *Rope) String() string {
	builder := strings.Builder{}
	builder.Grow(int(r.length))
	for s := range r.Fragments() {
		_, _ = builder.WriteString(s)
	}
	return builder.String()
}

// Concat returns a new rope, r and other are left untouched.
func (r *Rope) Concat(other *Rope) *Rope {
	res := NewRope()
	for s := range r.Fragments() {
		res.Append(s)
	}
	if other != nil {
		for s := range other.Fragments() {
			res.Append(s)
		}
	}
	return res
}

// Substring returns the bytes in [start, end).
func (r *Rope) Substring(start, end int64) (string, error) {
	if start < 0 || end > r.length || start > end {
		return "", fmt.Errorf("%w: [%d, %d) of %d", ErrIndexOutOfBounds, start, end, r.length)
	}
	if start == end {
		return "", nil
	}
	first, ok := r.fragments.FloorOk(start)
	if !ok {
		// impossible run to here
		panic( /* debug assertion */ "[text] rope has no fragment at offset 0")
	}
	builder := strings.Builder{}
	builder.Grow(int(end - start))
	for off, s := range r.fragments.Range(first, end-1) {
		from := max(start-off, 0)
		to := min(end-off, int64(len(s)))
		_, _ = builder.WriteString(s[from:to])
	}
	return builder.String(), nil
}
