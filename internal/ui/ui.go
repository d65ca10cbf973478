package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"tixpack/internal/models"
	"tixpack/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PackageListView ViewState = iota
	TicketListView
	UnallocatedListView
	ConfirmMoveView
)

// Model represents the TUI application state.
type Model struct {
	ctx              context.Context
	view             ViewState
	packages         *services.PackageService
	tickets          *services.TicketService
	width            int
	height           int
	filter           models.PackageFilter
	packageList      list.Model
	packageListReady bool
	ticketList       list.Model
	selectedPackage  *models.PackageInfo
	unallocated      []*models.Ticket
	err              error
	notice           string
	help             help.Model
	keys             keyMap
}

type packagesFetchedMsg struct {
	packages []models.PackageInfo
	err      error
}

type ticketsFetchedMsg struct {
	tickets []*models.Ticket
	err     error
}

type unallocatedFetchedMsg struct {
	tickets []*models.Ticket
	err     error
}

type moveCompleteMsg struct {
	moved int
	err   error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, packages *services.PackageService, tickets *services.TicketService) *Model {
	return &Model{
		ctx:      ctx,
		view:     PackageListView,
		packages: packages,
		tickets:  tickets,
		filter:   models.FilterAll,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by fetching the unfiltered package listing.
func (m *Model) Init() tea.Cmd {
	return m.fetchPackages()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.packageList.Width() == 0 {
			m.packageList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.ticketList.Width() == 0 {
			m.ticketList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PackageListView:
			return m.handlePackageListKeys(msg)
		case TicketListView:
			return m.handleTicketListKeys(msg)
		case UnallocatedListView:
			return m.handleUnallocatedKeys(msg)
		case ConfirmMoveView:
			return m.handleConfirmKeys(msg)
		}

	case packagesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.packages))
		for i, pkg := range msg.packages {
			items[i] = packageItem{info: pkg}
		}
		var cmd tea.Cmd
		if m.packageListReady {
			cmd = m.packageList.SetItems(items)
		} else {
			m.packageList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.packageList.SetSize(m.width-4, m.height-8)
			m.packageListReady = true
		}
		m.packageList.Title = fmt.Sprintf("Packages: %s", m.filter)
		return m, cmd

	case ticketsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PackageListView
			return m, nil
		}
		m.ticketList = m.newTicketList(msg.tickets, fmt.Sprintf("Tickets in '%s'", m.selectedPackage.Label()))
		m.view = TicketListView
		return m, nil

	case unallocatedFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PackageListView
			return m, nil
		}
		m.unallocated = msg.tickets
		m.ticketList = m.newTicketList(msg.tickets, fmt.Sprintf("Unallocated for '%s'", m.selectedPackage.Label()))
		m.view = UnallocatedListView
		return m, nil

	case moveCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = UnallocatedListView
			return m, nil
		}
		m.notice = fmt.Sprintf("Moved %d tickets into '%s'", msg.moved, m.selectedPackage.Label())
		m.view = PackageListView
		return m, m.fetchPackages()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == PackageListView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PackageListView:
		return m.renderPackageList()
	case TicketListView, UnallocatedListView:
		return m.renderTicketList()
	case ConfirmMoveView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handlePackageListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.filter = m.filter.Next()
		m.notice = ""
		return m, m.fetchPackages()
	case "enter":
		if pkg := m.selected(); pkg != nil {
			m.selectedPackage = pkg
			return m, m.fetchTickets(pkg.ID)
		}
	case "u":
		if pkg := m.selected(); pkg != nil {
			m.selectedPackage = pkg
			return m, m.fetchUnallocated(pkg.ID)
		}
	}

	var cmd tea.Cmd
	m.packageList, cmd = m.packageList.Update(msg)
	return m, cmd
}

func (m *Model) handleTicketListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PackageListView
		return m, nil
	}

	var cmd tea.Cmd
	m.ticketList, cmd = m.ticketList.Update(msg)
	return m, cmd
}

func (m *Model) handleUnallocatedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PackageListView
		return m, nil
	case "enter":
		if len(m.unallocated) > 0 && m.selectedPackage.IsOpened {
			m.view = ConfirmMoveView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.ticketList, cmd = m.ticketList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = UnallocatedListView
		return m, nil
	case "y":
		return m, m.moveUnallocated()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PackageListView:
		m.packageList, cmd = m.packageList.Update(msg)
	case TicketListView, UnallocatedListView:
		m.ticketList, cmd = m.ticketList.Update(msg)
	}
	return m, cmd
}

func (m *Model) selected() *models.PackageInfo {
	item := m.packageList.SelectedItem()
	if item == nil {
		return nil
	}
	if pkg, ok := item.(packageItem); ok {
		info := pkg.info
		return &info
	}
	return nil
}

func (m *Model) newTicketList(tickets []*models.Ticket, title string) list.Model {
	items := make([]list.Item, len(tickets))
	for i, t := range tickets {
		items[i] = ticketItem{ticket: *t}
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetSize(m.width-4, m.height-8)
	return l
}

func (m *Model) fetchPackages() tea.Cmd {
	return func() tea.Msg {
		packages, err := m.packages.GetPackages(m.ctx, models.PackageQuery{Filter: m.filter})
		return packagesFetchedMsg{packages: packages, err: err}
	}
}

func (m *Model) fetchTickets(packageID int) tea.Cmd {
	return func() tea.Msg {
		tickets, err := m.packages.GetPackageTickets(m.ctx, packageID, true)
		return ticketsFetchedMsg{tickets: tickets, err: err}
	}
}

func (m *Model) fetchUnallocated(packageID int) tea.Cmd {
	return func() tea.Msg {
		var tickets []*models.Ticket
		for t, err := range m.tickets.GetUnallocatedTickets(m.ctx, packageID) {
			if err != nil {
				return unallocatedFetchedMsg{err: err}
			}
			tickets = append(tickets, t)
		}
		return unallocatedFetchedMsg{tickets: tickets}
	}
}

func (m *Model) moveUnallocated() tea.Cmd {
	return func() tea.Msg {
		ids := make([]int, len(m.unallocated))
		for i, t := range m.unallocated {
			ids[i] = t.ID
		}
		err := m.tickets.MoveFewToPackage(m.ctx, m.selectedPackage.ID, ids)
		return moveCompleteMsg{moved: len(ids), err: err}
	}
}

func (m *Model) renderPackageList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.unallocated, m.keys.tab, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	body := m.packageList.View()
	if m.notice != "" {
		body = fmt.Sprintf("%s\n%s", styles.ok.Render(m.notice), body)
	}
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}

func (m *Model) renderTicketList() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	if m.view == UnallocatedListView {
		moveKey := key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "move all"),
		)
		helpKeys = append([]key.Binding{moveKey}, helpKeys...)
	}
	helpView := m.help.ShortHelpView(helpKeys)

	body := m.ticketList.View()
	if m.view == UnallocatedListView && !m.selectedPackage.IsOpened {
		body = fmt.Sprintf("%s\n%s", styles.warn.Render("Package is closed; open it to move tickets."), body)
	}
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Move %d tickets into '%s'?", len(m.unallocated), m.selectedPackage.Label()))
	info := fmt.Sprintf("\nPackage: %s\nTickets: %d\n", m.selectedPackage.Label(), len(m.unallocated))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}
