package sql_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/lang"
	sqllang "github.com/synless-editor/synless/languages/sql"
)

const sampleSQL = `select id, name from widgets where id = 1;
insert into widgets (id, name) values (2, 'gadget');
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.sql")
	require.NoError(t, os.WriteFile(path, []byte(sampleSQL), 0o644))
	return path
}

func TestLanguageValidates(t *testing.T) {
	r := lang.NewRegistry()
	require.NoError(t, r.Add(sqllang.Language()))
}

func TestLoadSplitsSelectWhereFromInsert(t *testing.T) {
	s, root, err := sqllang.Load(writeSample(t))
	require.NoError(t, err)

	rootChildren, ok := s.Children(root)
	require.True(t, ok)
	require.Len(t, rootChildren, 1)

	stmts, ok := s.Children(rootChildren[0])
	require.True(t, ok)
	require.Len(t, stmts, 2)

	selectView, ok := s.Get(stmts[0])
	require.True(t, ok)
	require.Equal(t, "Select", selectView.Construct)

	selectChildren, ok := s.Children(stmts[0])
	require.True(t, ok)
	whereView, ok := s.Get(selectChildren[1])
	require.True(t, ok)
	require.Equal(t, "WhereClause", whereView.Construct)
	require.False(t, whereView.IsHole)

	insertView, ok := s.Get(stmts[1])
	require.True(t, ok)
	require.Equal(t, "Insert", insertView.Construct)
}

func TestLoadLeavesWhereAsHoleWithoutClause(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.sql")
	require.NoError(t, os.WriteFile(path, []byte("select * from widgets;"), 0o644))

	s, root, err := sqllang.Load(path)
	require.NoError(t, err)

	rootChildren, _ := s.Children(root)
	stmts, _ := s.Children(rootChildren[0])
	selectChildren, _ := s.Children(stmts[0])
	whereView, ok := s.Get(selectChildren[1])
	require.True(t, ok)
	require.True(t, whereView.IsHole)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.sql")
	require.NoError(t, os.WriteFile(path, []byte("select ( from"), 0o644))

	_, _, err := sqllang.Load(path)
	require.Error(t, err)
}
