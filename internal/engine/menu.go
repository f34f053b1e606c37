package engine

import "sync"

// Anchor describes where an open menu is attached, in the consuming UI's
// coordinate space. The core never positions anything; it only carries the
// descriptor between open and render.
type Anchor struct {
	X      int
	Y      int
	Width  int
	Height int
}

// MenuState is the transient open-menu value: at most one menu is open
// system-wide. The zero value means no menu is open.
type MenuState struct {
	OpenTileID string
	Anchor     *Anchor
}

// Open reports whether any menu is open.
func (m MenuState) Open() bool {
	return m.OpenTileID != ""
}

// MenuCoordinator tracks which single tile's action menu is open.
//
// No persistence: this is interaction state whose lifetime is one overlay
// display. The TileStore closes the menu automatically when its tile is
// edited or cleared (see WithMenu); the UI layer is responsible for calling
// Close on outside interaction.
type MenuCoordinator struct {
	mu    sync.Mutex
	state MenuState
}

// NewMenuCoordinator creates a coordinator with no menu open.
func NewMenuCoordinator() *MenuCoordinator {
	return &MenuCoordinator{}
}

// Open opens the menu for a tile, implicitly closing whatever was open.
//
// tileID must identify a currently occupied slot. The coordinator does not
// verify this - the UI only renders menus on occupied tiles, and the
// close-on-edit/clear hook (see TileStore.WithMenu) keeps the reference from
// going stale afterwards.
func (m *MenuCoordinator) Open(tileID string, anchor Anchor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = MenuState{OpenTileID: tileID, Anchor: &anchor}
}

// Toggle closes the menu if it is already open for tileID, otherwise opens
// it there.
func (m *MenuCoordinator) Toggle(tileID string, anchor Anchor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.OpenTileID == tileID {
		m.state = MenuState{}
		return
	}
	m.state = MenuState{OpenTileID: tileID, Anchor: &anchor}
}

// Close closes any open menu.
func (m *MenuCoordinator) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = MenuState{}
}

// CloseFor closes the menu only if it is open for the given tile.
func (m *MenuCoordinator) CloseFor(tileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.OpenTileID == tileID {
		m.state = MenuState{}
	}
}

// State returns the current menu state.
func (m *MenuCoordinator) State() MenuState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
