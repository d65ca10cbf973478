// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the package inventory:
//  1. [PackageListView] : Browse packages, cycling listing filters with tab
//  2. [TicketListView] : Inspect the tickets allocated to a package
//  3. [UnallocatedListView] : Inspect unallocated tickets eligible for a package
//  4. [ConfirmMoveView] : Confirm moving the eligible tickets into the package
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Fetches run as commands against the service layer, so the lists always show
// current store state when (re)entered.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
