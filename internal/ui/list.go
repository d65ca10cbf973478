package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"tixpack/internal/models"
)

var (
	_ list.Item = packageItem{}
	_ list.Item = ticketItem{}
)

// packageItem wraps [models.PackageInfo] to implement [list.Item].
type packageItem struct {
	info models.PackageInfo
}

func (i packageItem) FilterValue() string { return i.info.Label() }
func (i packageItem) Title() string       { return i.info.Label() }
func (i packageItem) Description() string {
	state := "closed"
	if i.info.IsOpened {
		state = "open"
	}
	desc := fmt.Sprintf("%d tickets • %s", i.info.TicketsCount, state)
	if i.info.IsSpecial {
		desc = fmt.Sprintf("%s • special", desc)
	}
	return desc
}

// ticketItem wraps [models.Ticket] to implement [list.Item].
type ticketItem struct {
	ticket models.Ticket
}

func (i ticketItem) FilterValue() string { return fmt.Sprintf("%06d", i.ticket.Number) }
func (i ticketItem) Title() string       { return fmt.Sprintf("№ %06d", i.ticket.Number) }
func (i ticketItem) Description() string {
	if i.ticket.Note != "" {
		return i.ticket.Note
	}
	if i.ticket.PackageID == nil {
		return "unallocated"
	}
	return fmt.Sprintf("package %d", *i.ticket.PackageID)
}
