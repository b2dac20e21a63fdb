package database

import _ "embed"

//go:embed seed-program.json
var seedProgram []byte

// SeedProgram returns the embedded default program template. It is a legacy
// format template and is normalized on first start when no template or
// modular config is configured.
func SeedProgram() []byte {
	return seedProgram
}
