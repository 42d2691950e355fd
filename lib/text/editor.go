package text

import (
	"fmt"
	"iter"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/benz9527/xllrb/lib/tree"
	"github.com/benz9527/xllrb/xlog"
)

const (
	defaultLineKeyStride uint64 = 1 << 20
	maxLineKeyStride     uint64 = 1 << 32
)

// LineEditor is a cursor based line buffer. Lines are stored under
// sparse position keys, the index of a line is the rank of its key.
// Inserting between two lines picks the middle key, keys are
// renumbered only when two neighbours become adjacent.
//
// Not safe for concurrent use.
type LineEditor struct {
	lines  tree.LLRBTree[uint64, string]
	cursor int
	stride uint64
	logger xlog.XLogger
}

type LineEditorOption func(*LineEditor) error

func WithLineEditorLogger(logger xlog.XLogger) LineEditorOption {
	return func(e *LineEditor) error {
		if logger != nil {
			e.logger = logger
		}
		return nil
	}
}

// WithLineEditorStride sets the key distance used when lines are
// renumbered, in [2, 1<<32].
func WithLineEditorStride(stride uint64) LineEditorOption {
	return func(e *LineEditor) error {
		if stride < 2 || stride > maxLineKeyStride {
			return ErrInvalidStride
		}
		e.stride = stride
		return nil
	}
}

func NewLineEditor(opts ...LineEditorOption) (*LineEditor, error) {
	e := &LineEditor{
		lines:  tree.NewLLRBTree[uint64, string](),
		stride: defaultLineKeyStride,
		logger: xlog.NopXLogger(),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *LineEditor) Len() int {
	return int(e.lines.Len())
}

func (e *LineEditor) Cursor() int {
	return e.cursor
}

// Insert places a line before the line at the cursor and moves
// the cursor past it.
func (e *LineEditor) Insert(line string) {
	key, ok := e.keyAt(e.cursor)
	if !ok {
		e.renumber()
		if key, ok = e.keyAt(e.cursor); !ok {
			// impossible run to here
			panic( /* debug assertion */ "[text] no line key left after renumbering")
		}
	}
	e.lines.Insert(key, line)
	e.cursor++
}

// Delete removes the line before the cursor. Returns false at the
// start of the buffer.
func (e *LineEditor) Delete() bool {
	if e.cursor <= 0 {
		return false
	}
	key := e.lines.Select(int64(e.cursor - 1))
	e.lines.Delete(key)
	e.cursor--
	return true
}

// MoveCursor clamps pos into [0, Len].
func (e *LineEditor) MoveCursor(pos int) {
	e.cursor = min(max(pos, 0), e.Len())
}

func (e *LineEditor) Line(i int) (string, error) {
	if i < 0 || i >= e.Len() {
		return "", fmt.Errorf("%w: line %d of %d", ErrIndexOutOfBounds, i, e.Len())
	}
	_, line := e.lines.SelectVal(int64(i))
	return line, nil
}

func (e *LineEditor) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range e.lines.All() {
			if !yield(line) {
				return
			}
		}
	}
}

// Text joins every line, each one terminated by '\n'.
func (e *LineEditor) Text() string {
	builder := strings.Builder{}
	for line := range e.Lines() {
		_, _ = builder.WriteString(line)
		_ = builder.WriteByte('\n')
	}
	return builder.String()
}

// keyAt picks a key strictly between the keys of line idx-1 and
// line idx. Key 0 is never used, it is the lower bound of line 0.
func (e *LineEditor) keyAt(idx int) (uint64, bool) {
	var lo uint64
	if idx > 0 {
		lo = e.lines.Select(int64(idx - 1))
	}
	if idx >= e.Len() {
		if lo <= math.MaxUint64-e.stride {
			return lo + e.stride, true
		}
		// Close to the top, halve the room that is left.
		if math.MaxUint64-lo < 2 {
			return 0, false
		}
		return lo + (math.MaxUint64-lo)/2, true
	}
	hi := e.lines.Select(int64(idx))
	if hi-lo < 2 {
		return 0, false
	}
	return lo + (hi-lo)/2, true
}

// renumber spreads the keys evenly. The stride shrinks when the
// configured one leaves no room for one more appended line.
func (e *LineEditor) renumber() {
	lines := make([]string, 0, e.Len())
	for line := range e.Lines() {
		lines = append(lines, line)
	}
	stride := min(e.stride, math.MaxUint64/uint64(len(lines)+2))
	if stride < 2 {
		// impossible run to here
		panic( /* debug assertion */ "[text] too many lines to renumber")
	}
	e.lines.Release()
	for i, line := range lines {
		e.lines.Insert(uint64(i+1)*stride, line)
	}
	e.logger.Debug("line keys renumbered",
		zap.Int("lines", len(lines)),
		zap.Uint64("stride", stride),
	)
}
