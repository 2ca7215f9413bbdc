package loom

// Command is a reversible unit of mutation: a label for undo/redo menus
// and a Do/Undo closure pair that must be exact inverses. Undo must
// restore the precise prior state, including the absence of a value —
// the constructors on [Document] snapshot prior field state at creation
// time for exactly this reason.
//
// Do and Undo are pure state mutations and must not fail. An operation
// that can fail (I/O, validation) must report failure before being
// pushed, never from inside the closures.
type Command struct {
	Label string
	Do    func()
	Undo  func()
}

// CommandStack is an undo/redo history. Pushing a command executes it
// immediately; any new push forecloses prior redo candidates — there is
// no branching history.
type CommandStack struct {
	done   []Command
	undone []Command
}

// NewCommandStack creates an empty history.
func NewCommandStack() *CommandStack {
	return &CommandStack{}
}

// Push executes cmd.Do, appends cmd to the history, and clears the redo
// list. Commands with a nil closure are ignored.
func (s *CommandStack) Push(cmd Command) {
	if cmd.Do == nil || cmd.Undo == nil {
		debugf("history: ignoring command %q with nil closure", cmd.Label)
		return
	}
	cmd.Do()
	s.done = append(s.done, cmd)
	s.undone = s.undone[:0]
}

// Undo reverts the most recent command and moves it to the redo list.
// A no-op returning false when the history is empty.
func (s *CommandStack) Undo() bool {
	if len(s.done) == 0 {
		return false
	}
	cmd := s.done[len(s.done)-1]
	s.done = s.done[:len(s.done)-1]
	cmd.Undo()
	s.undone = append(s.undone, cmd)
	return true
}

// Redo re-executes the most recently undone command and moves it back to
// the history. A no-op returning false when there is nothing to redo.
func (s *CommandStack) Redo() bool {
	if len(s.undone) == 0 {
		return false
	}
	cmd := s.undone[len(s.undone)-1]
	s.undone = s.undone[:len(s.undone)-1]
	cmd.Do()
	s.done = append(s.done, cmd)
	return true
}

// CanUndo reports whether the history has a command to undo.
func (s *CommandStack) CanUndo() bool {
	return len(s.done) > 0
}

// CanRedo reports whether there is an undone command to redo.
func (s *CommandStack) CanRedo() bool {
	return len(s.undone) > 0
}

// UndoLabel returns the label of the command Undo would revert, or ""
// when the history is empty.
func (s *CommandStack) UndoLabel() string {
	if len(s.done) == 0 {
		return ""
	}
	return s.done[len(s.done)-1].Label
}

// RedoLabel returns the label of the command Redo would re-execute, or
// "" when there is nothing to redo.
func (s *CommandStack) RedoLabel() string {
	if len(s.undone) == 0 {
		return ""
	}
	return s.undone[len(s.undone)-1].Label
}

// HistoryLen returns the number of commands available to undo.
func (s *CommandStack) HistoryLen() int {
	return len(s.done)
}

// RedoLen returns the number of commands available to redo.
func (s *CommandStack) RedoLen() int {
	return len(s.undone)
}

// Clear drops the entire history, e.g. on document close. Commands keep
// references to their captured state until then.
func (s *CommandStack) Clear() {
	s.done = nil
	s.undone = nil
}
