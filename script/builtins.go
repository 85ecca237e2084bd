package script

import (
	"fmt"

	"go.starlark.net/starlark"
)

// registerBuiltins builds the predeclared environment every init
// script and callback runs against: one builtin per Host method,
// plus block().
func registerBuiltins(m *Machine, h Host) starlark.StringDict {
	d := starlark.StringDict{}

	reg := func(name string, fn func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)) {
		d[name] = starlark.NewBuiltin(name, fn)
	}

	noArgErr := func(name string, fn func() error) {
		reg(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(name, args, kwargs); err != nil {
				return nil, err
			}
			if err := fn(); err != nil {
				return nil, err
			}
			return starlark.None, nil
		})
	}
	oneStrErr := func(name, argName string, fn func(string) error) {
		reg(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s string
			if err := starlark.UnpackArgs(name, args, kwargs, argName, &s); err != nil {
				return nil, err
			}
			if err := fn(s); err != nil {
				return nil, err
			}
			return starlark.None, nil
		})
	}

	// Document lifecycle.
	oneStrErr("open_doc", "path", h.OpenDoc)
	oneStrErr("new_doc", "path", h.NewDoc)
	noArgErr("save_doc", h.SaveDoc)
	oneStrErr("save_doc_as", "path", h.SaveDocAs)
	noArgErr("close_doc", h.CloseDoc)
	noArgErr("force_close_visible_doc", h.ForceCloseVisibleDoc)
	oneStrErr("switch_to_doc", "path", h.SwitchToDoc)
	reg("has_unsaved_changes", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackArgs("has_unsaved_changes", args, kwargs); err != nil {
			return nil, err
		}
		return starlark.Bool(h.HasUnsavedChanges()), nil
	})
	reg("doc_switching_candidates", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return stringList(h.DocSwitchingCandidates()), nil
	})

	// Path utilities.
	reg("current_dir", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return starlark.String(h.CurrentDir()), nil
	})
	reg("canonicalize_path", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var p string
		if err := starlark.UnpackArgs("canonicalize_path", args, kwargs, "p", &p); err != nil {
			return nil, err
		}
		out, err := h.CanonicalizePath(p)
		if err != nil {
			return nil, err
		}
		return starlark.String(out), nil
	})
	reg("join_path", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var a, c string
		if err := starlark.UnpackArgs("join_path", args, kwargs, "a", &a, "b", &c); err != nil {
			return nil, err
		}
		return starlark.String(h.JoinPath(a, c)), nil
	})
	reg("path_file_name", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var p string
		if err := starlark.UnpackArgs("path_file_name", args, kwargs, "p", &p); err != nil {
			return nil, err
		}
		return starlark.String(h.PathFileName(p)), nil
	})
	reg("list_files_and_dirs", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var p string
		if err := starlark.UnpackArgs("list_files_and_dirs", args, kwargs, "p", &p); err != nil {
			return nil, err
		}
		files, dirs, err := h.ListFilesAndDirs(p)
		if err != nil {
			return nil, err
		}
		result := starlark.NewDict(2)
		_ = result.SetKey(starlark.String("files"), stringList(files))
		_ = result.SetKey(starlark.String("dirs"), stringList(dirs))
		return result, nil
	})

	// Tree navigation.
	noArgErr("tree_nav_next", h.TreeNavNext)
	noArgErr("tree_nav_prev", h.TreeNavPrev)
	noArgErr("tree_nav_first", h.TreeNavFirst)
	noArgErr("tree_nav_last", h.TreeNavLast)
	noArgErr("tree_nav_parent", h.TreeNavParent)
	noArgErr("tree_nav_first_child", h.TreeNavFirstChild)
	noArgErr("tree_nav_last_child", h.TreeNavLastChild)
	noArgErr("tree_nav_next_leaf", h.TreeNavNextLeaf)
	noArgErr("tree_nav_prev_leaf", h.TreeNavPrevLeaf)

	// Tree editing.
	oneStrErr("tree_ed_insert", "construct", h.TreeEdInsert)
	noArgErr("tree_ed_backspace", h.TreeEdBackspace)
	noArgErr("tree_ed_delete", h.TreeEdDelete)
	noArgErr("tree_ed_unwrap", h.TreeEdUnwrap)

	// Text navigation and editing.
	noArgErr("text_nav_enter", h.TextNavEnter)
	noArgErr("text_nav_exit", h.TextNavExit)
	noArgErr("text_nav_left", h.TextNavLeft)
	noArgErr("text_nav_right", h.TextNavRight)
	oneStrErr("text_ed_insert_char", "ch", h.TextEdInsertChar)
	noArgErr("text_ed_delete_backward", h.TextEdDeleteBackward)

	// Clipboard.
	noArgErr("copy", h.Copy)
	noArgErr("cut", h.Cut)
	noArgErr("paste", h.Paste)
	noArgErr("paste_swap", h.PasteSwap)

	// Search.
	oneStrErr("search_for_substring", "s", h.SearchForSubstring)
	oneStrErr("search_for_regex", "pattern", h.SearchForRegex)
	oneStrErr("search_for_construct", "construct", h.SearchForConstruct)
	noArgErr("search_for_node_at_cursor", h.SearchForNodeAtCursor)
	noArgErr("search_next", h.SearchNext)
	noArgErr("search_prev", h.SearchPrev)
	reg("search_highlight_off", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		h.SearchHighlightOff()
		return starlark.None, nil
	})

	// Bookmarks.
	oneStrErr("save_bookmark", "ch", h.SaveBookmark)
	oneStrErr("goto_bookmark", "ch", h.GotoBookmark)

	// Language registry.
	oneStrErr("load_language", "path", h.LoadLanguage)
	reg("get_language", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return starlark.String(h.GetLanguage()), nil
	})
	reg("language_constructs", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return stringList(h.LanguageConstructs()), nil
	})
	reg("construct_name", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var token string
		if err := starlark.UnpackArgs("construct_name", args, kwargs, "token", &token); err != nil {
			return nil, err
		}
		return starlark.String(h.ConstructName(token)), nil
	})
	reg("construct_key", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var token string
		if err := starlark.UnpackArgs("construct_key", args, kwargs, "token", &token); err != nil {
			return nil, err
		}
		return starlark.String(h.ConstructKey(token)), nil
	})

	// Menu lifecycle.
	reg("make_menu", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackArgs("make_menu", args, kwargs, "name", &name); err != nil {
			return nil, err
		}
		return starlark.MakeInt(h.MakeMenu(name)), nil
	})
	reg("set_menu_keymap", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		menu, km, err := unpackTwoHandles("set_menu_keymap", args, kwargs, "menu", "km")
		if err != nil {
			return nil, err
		}
		return starlark.None, h.SetMenuKeymap(menu, km)
	})
	reg("set_menu_kind_to_candidate", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var menu int
		var selectFirst bool
		if err := starlark.UnpackArgs("set_menu_kind_to_candidate", args, kwargs, "menu", &menu, "select_first", &selectFirst); err != nil {
			return nil, err
		}
		return starlark.None, h.SetMenuKindToCandidate(menu, selectFirst)
	})
	reg("set_menu_kind_to_input_string", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var menu int
		if err := starlark.UnpackArgs("set_menu_kind_to_input_string", args, kwargs, "menu", &menu); err != nil {
			return nil, err
		}
		return starlark.None, h.SetMenuKindToInputString(menu)
	})
	reg("open_menu", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var menu int
		if err := starlark.UnpackArgs("open_menu", args, kwargs, "menu", &menu); err != nil {
			return nil, err
		}
		return starlark.None, h.OpenMenu(menu)
	})
	reg("close_menu", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		h.CloseMenu()
		return starlark.None, nil
	})
	noArgErr("menu_selection_up", h.MenuSelectionUp)
	noArgErr("menu_selection_down", h.MenuSelectionDown)
	reg("menu_selection_backspace", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		h.MenuSelectionBackspace()
		return starlark.None, nil
	})

	// Keymap builders.
	reg("new_keymap", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return starlark.MakeInt(h.NewKeymap()), nil
	})
	reg("bind_key", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var km int
		var key, label, builtinID string
		if err := starlark.UnpackArgs("bind_key", args, kwargs, "km", &km, "key", &key, "label", &label, "builtin_id", &builtinID); err != nil {
			return nil, err
		}
		return starlark.None, h.BindKey(km, KeyLiteral(key), label, builtinID)
	})
	reg("bind_key_for_regular_candidate", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var km int
		var name string
		var payload starlark.Value
		if err := starlark.UnpackArgs("bind_key_for_regular_candidate", args, kwargs, "km", &km, "name", &name, "payload", &payload); err != nil {
			return nil, err
		}
		return starlark.None, h.BindKeyForRegularCandidate(km, name, payload)
	})
	reg("bind_key_for_special_candidate", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var km int
		var key, name string
		var payload starlark.Value
		if err := starlark.UnpackArgs("bind_key_for_special_candidate", args, kwargs, "km", &km, "key", &key, "name", &name, "payload", &payload); err != nil {
			return nil, err
		}
		return starlark.None, h.BindKeyForSpecialCandidate(km, KeyLiteral(key), name, payload)
	})
	reg("bind_key_for_custom_candidate", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var km int
		var fnVal starlark.Value
		if err := starlark.UnpackArgs("bind_key_for_custom_candidate", args, kwargs, "km", &km, "fn", &fnVal); err != nil {
			return nil, err
		}
		fn, ok := fnVal.(*starlark.Function)
		if !ok {
			return nil, fmt.Errorf("bind_key_for_custom_candidate: fn must be a function")
		}
		return starlark.None, h.BindKeyForCustomCandidate(km, fn)
	})
	reg("add_regular_candidate", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var km int
		var name string
		var payload starlark.Value
		if err := starlark.UnpackArgs("add_regular_candidate", args, kwargs, "km", &km, "name", &name, "payload", &payload); err != nil {
			return nil, err
		}
		return starlark.None, h.AddRegularCandidate(km, name, payload)
	})

	// Layer lifecycle.
	reg("new_layer", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackArgs("new_layer", args, kwargs, "name", &name); err != nil {
			return nil, err
		}
		return starlark.MakeInt(h.NewLayer(name)), nil
	})
	reg("add_mode_keymap", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var layer int
		var mode string
		var km int
		if err := starlark.UnpackArgs("add_mode_keymap", args, kwargs, "layer", &layer, "mode", &mode, "km", &km); err != nil {
			return nil, err
		}
		return starlark.None, h.AddModeKeymap(layer, mode, km)
	})
	reg("add_menu_keymap", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var layer int
		var menuName string
		var km int
		if err := starlark.UnpackArgs("add_menu_keymap", args, kwargs, "layer", &layer, "menu_name", &menuName, "km", &km); err != nil {
			return nil, err
		}
		return starlark.None, h.AddMenuKeymap(layer, menuName, km)
	})
	reg("register_layer", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var layer int
		if err := starlark.UnpackArgs("register_layer", args, kwargs, "layer", &layer); err != nil {
			return nil, err
		}
		return starlark.None, h.RegisterLayer(layer)
	})
	reg("add_global_layer", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var layer int
		if err := starlark.UnpackArgs("add_global_layer", args, kwargs, "layer", &layer); err != nil {
			return nil, err
		}
		return starlark.None, h.AddGlobalLayer(layer)
	})

	// Control.
	noArgErr("escape", h.Escape)
	noArgErr("abort", h.Abort)
	noArgErr("quit", h.Quit)

	// Logging.
	oneStr := func(name string, fn func(string)) {
		reg(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s string
			if err := starlark.UnpackArgs(name, args, kwargs, "msg", &s); err != nil {
				return nil, err
			}
			fn(s)
			return starlark.None, nil
		})
	}
	oneStr("log_error", h.LogError)
	oneStr("log_debug", h.LogDebug)
	reg("clear_last_log", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		h.ClearLastLog()
		return starlark.None, nil
	})

	// block() -- the one suspension point.
	reg("block", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var menu string
		if err := starlark.UnpackArgs("block", args, kwargs, "menu", &menu); err != nil {
			return nil, err
		}
		return m.block(menu)
	})

	return d
}

func stringList(items []string) *starlark.List {
	vals := make([]starlark.Value, len(items))
	for i, s := range items {
		vals[i] = starlark.String(s)
	}
	return starlark.NewList(vals)
}

func unpackTwoHandles(name string, args starlark.Tuple, kwargs []starlark.Tuple, n1, n2 string) (a, b int, err error) {
	err = starlark.UnpackArgs(name, args, kwargs, n1, &a, n2, &b)
	return
}
