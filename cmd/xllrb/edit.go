package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/safeopen"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/benz9527/xllrb/lib/text"
	"github.com/benz9527/xllrb/xlog"
)

const (
	maxLineBytes = 1 << 20
)

func loadLineEditor(path string, logger xlog.XLogger) (*text.LineEditor, error) {
	f, err := safeopen.OpenBeneath(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	editor, err := text.NewLineEditor(text.WithLineEditorLogger(logger))
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	for sc.Scan() {
		editor.Insert(sc.Text())
	}
	if err = sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return editor, nil
}

// runEditorDemo replays the classic three step session: type three
// lines, erase the last one, then insert above the second line.
func runEditorDemo(w io.Writer, logger xlog.XLogger) error {
	editor, err := text.NewLineEditor(text.WithLineEditorLogger(logger))
	if err != nil {
		return err
	}
	editor.Insert("Hello, world!")
	editor.Insert("This is a test.")
	editor.Insert("Rust is awesome.")
	_, _ = fmt.Fprintf(w, "Current text:\n%s\n", editor.Text())

	editor.Delete()
	_, _ = fmt.Fprintf(w, "After deletion:\n%s\n", editor.Text())

	editor.MoveCursor(1)
	editor.Insert("Inserted line.")
	_, _ = fmt.Fprintf(w, "After insertion at cursor:\n%s", editor.Text())
	return nil
}

// applyEdits moves the cursor to at (the end when negative), erases
// backspaces lines before it, then types the given lines.
func applyEdits(editor *text.LineEditor, at, backspaces int, lines []string) {
	if at < 0 {
		at = editor.Len()
	}
	editor.MoveCursor(at)
	for i := 0; i < backspaces && editor.Delete(); i++ {
	}
	for _, line := range lines {
		editor.Insert(line)
	}
}

func edit(c *cli.Context) error {
	logger, err := newAppLogger(c)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	path := c.Path("file")
	if path == "" {
		return runEditorDemo(os.Stdout, logger)
	}
	editor, err := loadLineEditor(path, logger)
	if err != nil {
		return err
	}
	applyEdits(editor, c.Int("at"), c.Int("backspace"), c.StringSlice("insert"))
	logger.Debug("edited", zap.String("file", path), zap.Int("lines", editor.Len()))
	_, err = io.WriteString(os.Stdout, editor.Text())
	return err
}

func init() {
	commands = append(commands, &cli.Command{
		Name:   "edit",
		Usage:  "Edit the lines of a file and print the result, or replay the demo session",
		Action: edit,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "input file, the demo session runs without it",
			},
			&cli.IntFlag{
				Name:  "at",
				Value: -1,
				Usage: "cursor position, the end of the buffer when negative",
			},
			&cli.IntFlag{
				Name:  "backspace",
				Usage: "lines erased before the cursor",
			},
			&cli.StringSliceFlag{
				Name:  "insert",
				Usage: "lines typed at the cursor",
			},
		},
	})
}
