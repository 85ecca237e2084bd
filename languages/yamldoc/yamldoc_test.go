package yamldoc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/languages/yamldoc"
)

const sampleYAML = `name: widget
tags:
  - small
  - blue
meta:
  owner: alice
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	return path
}

func TestLanguageValidates(t *testing.T) {
	r := lang.NewRegistry()
	require.NoError(t, r.Add(yamldoc.Language()))
}

func TestLoadBuildsMappingTree(t *testing.T) {
	s, root, err := yamldoc.Load(writeSample(t))
	require.NoError(t, err)

	rootChildren, ok := s.Children(root)
	require.True(t, ok)
	require.Len(t, rootChildren, 1)

	mappingView, ok := s.Get(rootChildren[0])
	require.True(t, ok)
	require.Equal(t, "Mapping", mappingView.Construct)

	pairs, ok := s.Children(rootChildren[0])
	require.True(t, ok)
	require.Len(t, pairs, 3)

	firstPairChildren, ok := s.Children(pairs[0])
	require.True(t, ok)
	keyText, _ := s.Text(firstPairChildren[0])
	require.Equal(t, "name", keyText)
	valText, _ := s.Text(firstPairChildren[1])
	require.Equal(t, "widget", valText)

	secondPairChildren, ok := s.Children(pairs[1])
	require.True(t, ok)
	seqView, ok := s.Get(secondPairChildren[1])
	require.True(t, ok)
	require.Equal(t, "Sequence", seqView.Construct)
	seqItems, ok := s.Children(secondPairChildren[1])
	require.True(t, ok)
	require.Len(t, seqItems, 2)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key: [unterminated"), 0o644))

	_, _, err := yamldoc.Load(path)
	require.Error(t, err)
}

func TestLoadRejectsEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, _, err := yamldoc.Load(path)
	require.Error(t, err)
}
