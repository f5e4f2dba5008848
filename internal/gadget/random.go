package gadget

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
)

// codenames is the fixed roster new gadgets are named from.
var codenames = []string{
	"The Nightingale", "The Kraken", "The Phantom", "The Falcon",
	"The Shadow", "The Viper", "The Orion", "The Titan",
	"The Eclipse", "The Leviathan", "The Basilisk", "The Gryphon",
	"The Behemoth", "The Sphinx", "The Chimera", "The Wendigo",
	"The Hydra", "The Colossus", "The Banshee", "The Andromeda",
	"The Supernova", "The Nebula", "The Solstice", "The Aurora",
	"The Vortex", "The Tempest", "The Monolith", "The Obsidian",
	"The Glacier", "The Harbinger", "The Enigma", "The Paradox",
	"The Vanguard", "The Onslaught", "The Ironclad", "The Aegis",
	"The Omen", "The Requiem", "The Eternity", "The Crimson Cyclone",
	"The Silent Specter", "The Silver Serpent", "The Blackened Blade",
	"The Wandering Wraith",
}

// Codenames returns a copy of the codename roster.
func Codenames() []string {
	out := make([]string, len(codenames))
	copy(out, codenames)
	return out
}

const (
	// codeLength is the number of characters in a confirmation code.
	codeLength = 6

	// codeAlphabet is the character set for confirmation codes.
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Randomizer supplies the random attributes the Engine needs.
type Randomizer interface {
	// Codename picks a name from the roster.
	Codename() string

	// Status picks a status uniformly from AllStatuses.
	Status() Status

	// Probability returns an integer percentage in [1, 100].
	Probability() int

	// ConfirmationCode returns a non-predictable uppercase alphanumeric code.
	ConfirmationCode() (string, error)
}

// DefaultRandomizer is the production Randomizer.
// Display attributes use math/rand/v2; confirmation codes use crypto/rand.
type DefaultRandomizer struct{}

// Codename implements Randomizer.
func (DefaultRandomizer) Codename() string {
	return codenames[mrand.IntN(len(codenames))] //nolint:gosec // display value only
}

// Status implements Randomizer.
func (DefaultRandomizer) Status() Status {
	return AllStatuses[mrand.IntN(len(AllStatuses))] //nolint:gosec // display value only
}

// Probability implements Randomizer.
func (DefaultRandomizer) Probability() int {
	return mrand.IntN(100) + 1 //nolint:gosec,mnd // percentage in [1, 100]
}

// ConfirmationCode implements Randomizer.
func (DefaultRandomizer) ConfirmationCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, codeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generating confirmation code: %w", err)
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// formatProbability renders p as "<p>%".
func formatProbability(p int) string {
	return fmt.Sprintf("%d%%", p)
}
