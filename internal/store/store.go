// Package store holds the save-document backends behind game.SaveStore.
package store

import "bigboss/internal/game"

// DefaultSlot names the save row used when no slot is configured.
const DefaultSlot = "default"

var (
	_ game.SaveStore = (*File)(nil)
	_ game.SaveStore = (*Memory)(nil)
	_ game.SaveStore = (*SQLite)(nil)
	_ game.SaveStore = (*Postgres)(nil)
)
