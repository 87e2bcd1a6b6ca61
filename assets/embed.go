// Package assets embeds the game page served under /game/.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed game
var files embed.FS

// Game returns the game directory as the root of an fs.FS.
func Game() fs.FS {
	sub, err := fs.Sub(files, "game")
	if err != nil {
		panic(err)
	}
	return sub
}
