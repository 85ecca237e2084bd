package synerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synless-editor/synless/synerr"
)

func TestWrapPreservesBothCategoryAndDetail(t *testing.T) {
	detail := errors.New("slot 0 expects sort value")
	err := synerr.Wrap(synerr.Grammar, detail)

	require.True(t, errors.Is(err, synerr.Grammar))
	require.True(t, errors.Is(err, detail))
	require.False(t, errors.Is(err, synerr.Navigation))
	require.Equal(t, "grammar error: slot 0 expects sort value", err.Error())
}

func TestWrapWithNilDetailReturnsBareCategory(t *testing.T) {
	err := synerr.Wrap(synerr.IO, nil)
	require.Same(t, synerr.IO, err)
}

func TestWrapfFormatsDetailMessage(t *testing.T) {
	err := synerr.Wrapf(synerr.Parse, "line %d: unexpected %q", 3, "}")

	require.True(t, errors.Is(err, synerr.Parse))
	require.Equal(t, "parse error: line 3: unexpected \"}\"", err.Error())
}

func TestFromNameResolvesKnownCategories(t *testing.T) {
	cases := map[string]error{
		"GrammarError":    synerr.Grammar,
		"NavigationError": synerr.Navigation,
		"NotFound":        synerr.NotFound,
		"IoError":         synerr.IO,
		"ParseError":      synerr.Parse,
		"ScriptError":     synerr.Script,
		"Abort":           synerr.Abort,
		"Escape":          synerr.Escape,
	}
	for name, want := range cases {
		require.Same(t, want, synerr.FromName(name), "name %q", name)
	}
}

func TestFromNameReturnsNilForUnknownName(t *testing.T) {
	require.Nil(t, synerr.FromName("NotACategory"))
}
