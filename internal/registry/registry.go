// Package registry holds the player name to class mapping used to resolve
// each player's role.
package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"

	"github.com/nao1215/thronescan/internal/model"
)

// DefaultFile is the registry file name looked up when none is configured.
const DefaultFile = "class.csv"

// ErrRegistryNotFound is returned when the registry file does not exist.
var ErrRegistryNotFound = errors.New("class registry not found")

// Registry maps player names to classes. Names are matched exactly but
// without regard to case.
type Registry struct {
	classes map[string]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{classes: make(map[string]string)}
}

// Load reads a registry file of "name,class" lines.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided registry path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRegistryNotFound, path)
		}
		return nil, fmt.Errorf("failed to open class registry: %w", err)
	}
	defer f.Close()

	r, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read class registry %s: %w", path, err)
	}
	return r, nil
}

// Parse reads "name,class" lines from r. Each line is split on its first
// comma and both sides are trimmed. Blank lines, lines starting with '#'
// and lines without a comma are ignored. A later line for the same name
// replaces an earlier one.
func Parse(r io.Reader) (*Registry, error) {
	reg := New()
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, class, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		reg.Set(name, class)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Set records the class of a player. Empty names or classes are ignored.
func (r *Registry) Set(name, class string) {
	key := fold(name)
	class = strings.TrimSpace(class)
	if key == "" || class == "" {
		return
	}
	r.classes[key] = class
}

// Lookup returns the class of the named player, or model.ClassUnknown.
func (r *Registry) Lookup(name string) string {
	if class, ok := r.classes[fold(name)]; ok {
		return class
	}
	return model.ClassUnknown
}

// Len returns the number of registered players.
func (r *Registry) Len() int {
	return len(r.classes)
}

// fold normalizes a name for case-insensitive matching. A new Caser is
// built per call since Casers keep state and must not be shared.
func fold(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
