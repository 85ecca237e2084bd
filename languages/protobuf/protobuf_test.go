package protobuf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/lang"
	"github.com/synless-editor/synless/languages/protobuf"
)

const sampleProto = `syntax = "proto3";

package widget;

message Widget {
  string name = 1;
  int32 count = 2;
}

service WidgetService {
  rpc GetWidget(Widget) returns (Widget);
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.proto")
	require.NoError(t, os.WriteFile(path, []byte(sampleProto), 0o644))
	return path
}

func TestLanguageValidates(t *testing.T) {
	r := lang.NewRegistry()
	require.NoError(t, r.Add(protobuf.Language()))
}

func TestLoadBuildsMessageAndService(t *testing.T) {
	s, root, err := protobuf.Load(writeSample(t))
	require.NoError(t, err)

	rootChildren, ok := s.Children(root)
	require.True(t, ok)
	require.Len(t, rootChildren, 1)

	decls, ok := s.Children(rootChildren[0])
	require.True(t, ok)
	require.GreaterOrEqual(t, len(decls), 4)

	var message, service *int
	for i, d := range decls {
		view, ok := s.Get(d)
		require.True(t, ok)
		switch view.Construct {
		case "Message":
			idx := i
			message = &idx
		case "Service":
			idx := i
			service = &idx
		}
	}
	require.NotNil(t, message)
	require.NotNil(t, service)

	msgChildren, ok := s.Children(decls[*message])
	require.True(t, ok)
	nameText, _ := s.Text(msgChildren[0])
	require.Equal(t, "Widget", nameText)
	fields, ok := s.Children(msgChildren[1])
	require.True(t, ok)
	require.Len(t, fields, 2)

	svcChildren, ok := s.Children(decls[*service])
	require.True(t, ok)
	svcName, _ := s.Text(svcChildren[0])
	require.Equal(t, "WidgetService", svcName)
	rpcs, ok := s.Children(svcChildren[1])
	require.True(t, ok)
	require.Len(t, rpcs, 1)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.proto")
	require.NoError(t, os.WriteFile(path, []byte("message {"), 0o644))

	_, _, err := protobuf.Load(path)
	require.Error(t, err)
}
