package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xllrb/xlog"
)

func TestRunEditorDemo(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, runEditorDemo(out, xlog.NopXLogger()))
	require.Equal(t, "Current text:\n"+
		"Hello, world!\nThis is a test.\nRust is awesome.\n\n"+
		"After deletion:\n"+
		"Hello, world!\nThis is a test.\n\n"+
		"After insertion at cursor:\n"+
		"Hello, world!\nInserted line.\nThis is a test.\n",
		out.String(),
	)
}

func TestLoadLineEditor(t *testing.T) {
	path := writeTestFile(t, "notes.txt", "one\ntwo\nthree\nfour")
	editor, err := loadLineEditor(path, xlog.NopXLogger())
	require.NoError(t, err)
	require.Equal(t, 4, editor.Len())
	require.Equal(t, "one\ntwo\nthree\nfour\n", editor.Text())

	applyEdits(editor, 2, 1, []string{"2", "2.5"})
	require.Equal(t, "one\n2\n2.5\nthree\nfour\n", editor.Text())

	applyEdits(editor, -1, 0, []string{"five"})
	require.Equal(t, "one\n2\n2.5\nthree\nfour\nfive\n", editor.Text())

	// More backspaces than lines stops at the start.
	applyEdits(editor, 2, 10, nil)
	require.Equal(t, "2.5\nthree\nfour\nfive\n", editor.Text())
	require.Equal(t, 0, editor.Cursor())

	_, err = loadLineEditor(path+".missing", xlog.NopXLogger())
	require.Error(t, err)
}
