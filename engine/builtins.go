package engine

import "github.com/synless-editor/synless/edit"

// buildBuiltins returns the dispatch table run() consults for a
// Program with IsBuiltin set: the built-in commands a keymap can bind
// directly, without going through the scripting host. Every entry here
// is a zero-argument Host-ish operation; anything needing a script
// argument (insert a specific construct, open a named file) is always
// bound as a starlark callback instead.
func (e *Engine) buildBuiltins() map[string]func(*Engine) error {
	return map[string]func(*Engine) error{
		"tree_nav_next":       (*Engine).TreeNavNext,
		"tree_nav_prev":       (*Engine).TreeNavPrev,
		"tree_nav_first":      (*Engine).TreeNavFirst,
		"tree_nav_last":       (*Engine).TreeNavLast,
		"tree_nav_parent":     (*Engine).TreeNavParent,
		"tree_nav_first_child": (*Engine).TreeNavFirstChild,
		"tree_nav_last_child":  (*Engine).TreeNavLastChild,
		"tree_nav_next_leaf":   (*Engine).TreeNavNextLeaf,
		"tree_nav_prev_leaf":   (*Engine).TreeNavPrevLeaf,

		"tree_ed_backspace": (*Engine).TreeEdBackspace,
		"tree_ed_delete":    (*Engine).TreeEdDelete,
		"tree_ed_unwrap":    (*Engine).TreeEdUnwrap,

		"text_nav_enter": (*Engine).TextNavEnter,
		"text_nav_exit":  (*Engine).TextNavExit,
		"text_nav_left":  (*Engine).TextNavLeft,
		"text_nav_right": (*Engine).TextNavRight,
		"text_ed_delete_backward": (*Engine).TextEdDeleteBackward,

		"copy":       (*Engine).Copy,
		"cut":        (*Engine).Cut,
		"paste":      (*Engine).Paste,
		"paste_swap": (*Engine).PasteSwap,

		"search_next":          (*Engine).SearchNext,
		"search_prev":          (*Engine).SearchPrev,
		"search_for_node_at_cursor": (*Engine).SearchForNodeAtCursor,

		"undo": func(e *Engine) error {
			d, err := e.active()
			if err != nil {
				return err
			}
			return edit.Undo(d)
		},
		"redo": func(e *Engine) error {
			d, err := e.active()
			if err != nil {
				return err
			}
			return edit.Redo(d)
		},

		"save_doc": (*Engine).SaveDoc,
		"close_doc": (*Engine).CloseDoc,

		"menu_selection_up":        (*Engine).MenuSelectionUp,
		"menu_selection_down":      (*Engine).MenuSelectionDown,
		"menu_selection_backspace": func(e *Engine) error { e.MenuSelectionBackspace(); return nil },
		"close_menu":               func(e *Engine) error { e.CloseMenu(); return nil },

		"escape": (*Engine).Escape,
		"abort":  (*Engine).Abort,
		"quit":   (*Engine).Quit,
	}
}
