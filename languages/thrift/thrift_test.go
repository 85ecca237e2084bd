package thrift_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/languages/thrift"
)

const sampleThrift = `struct Widget {
  1: required string name
  2: optional i32 count
}

service WidgetService {
  Widget getWidget(1: string name)
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.thrift")
	require.NoError(t, os.WriteFile(path, []byte(sampleThrift), 0o644))
	return path
}

func TestLanguageValidates(t *testing.T) {
	r := lang.NewRegistry()
	require.NoError(t, r.Add(thrift.Language()))
}

func TestLoadBuildsStructAndService(t *testing.T) {
	s, root, err := thrift.Load(writeSample(t))
	require.NoError(t, err)

	rootChildren, ok := s.Children(root)
	require.True(t, ok)
	require.Len(t, rootChildren, 1)

	decls, ok := s.Children(rootChildren[0])
	require.True(t, ok)
	require.Len(t, decls, 2)

	structView, ok := s.Get(decls[0])
	require.True(t, ok)
	require.Equal(t, "Struct", structView.Construct)

	structChildren, ok := s.Children(decls[0])
	require.True(t, ok)
	nameText, _ := s.Text(structChildren[0])
	require.Equal(t, "Widget", nameText)
	fields, ok := s.Children(structChildren[1])
	require.True(t, ok)
	require.Len(t, fields, 2)

	serviceView, ok := s.Get(decls[1])
	require.True(t, ok)
	require.Equal(t, "Service", serviceView.Construct)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.thrift")
	require.NoError(t, os.WriteFile(path, []byte("struct {"), 0o644))

	_, _, err := thrift.Load(path)
	require.Error(t, err)
}
