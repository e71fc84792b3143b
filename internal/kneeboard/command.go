package kneeboard

import "sort"

// Command identifies a parameterless controller action.
type Command string

// Commands.
const (
	CmdNextPage        Command = "next_page"
	CmdPreviousPage    Command = "previous_page"
	CmdFirstPage       Command = "first_page"
	CmdLastPage        Command = "last_page"
	CmdToggleNightMode Command = "toggle_night_mode"
	CmdRefresh         Command = "refresh"
)

var commandTable = map[Command]func(*Controller){
	CmdNextPage:        (*Controller).NextPage,
	CmdPreviousPage:    (*Controller).PreviousPage,
	CmdFirstPage:       (*Controller).FirstPage,
	CmdLastPage:        (*Controller).LastPage,
	CmdToggleNightMode: func(c *Controller) { c.ToggleNightMode() },
	CmdRefresh:         (*Controller).Refresh,
}

// Execute runs cmd against the controller. ok is false for unknown commands.
func (c *Controller) Execute(cmd Command) (ok bool) {
	fn, ok := commandTable[cmd]
	if !ok {
		return false
	}
	fn(c)
	return true
}

// Commands lists every known command in name order.
func Commands() []Command {
	out := make([]Command, 0, len(commandTable))
	for cmd := range commandTable {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
