// Package matrix generates the set of artifact-name templates covered by a
// CI run. Names are built as the cross product of the supported target
// dimensions (libc, architecture/ABI, multilib mode, instruction-set
// extensions), with unsupported combinations filtered out.
package matrix

import (
	"fmt"
	"strings"
)

// TargetMatrix describes the supported build-target dimensions. Arch entries
// are templates with two placeholders: one for the extension set and one left
// open for the commit hash.
type TargetMatrix struct {
	// Libc lists the supported C library variants (e.g. gcc-linux, gcc-newlib)
	Libc []string `yaml:"libc"`

	// Arch lists architecture/ABI templates (e.g. "rv64%s-lp64d-%s")
	Arch []string `yaml:"arch"`

	// Multilib lists the multilib modes (multilib, non-multilib)
	Multilib []string `yaml:"multilib"`

	// Extensions lists the instruction-set extension sets (e.g. gc)
	Extensions []string `yaml:"extensions"`
}

// DefaultTargets returns the target matrix currently exercised by CI.
//
// Current support:
//
//	Linux:  rv32/64 multilib and non-multilib
//	Newlib: rv32/64 non-multilib
//	Arch extensions: gc
func DefaultTargets() TargetMatrix {
	return TargetMatrix{
		Libc:       []string{"gcc-linux", "gcc-newlib"},
		Arch:       []string{"rv32%s-ilp32d-%s", "rv64%s-lp64d-%s"},
		Multilib:   []string{"multilib", "non-multilib"},
		Extensions: []string{"gc"},
	}
}

// Generate produces every supported artifact-name template from the matrix.
// Each returned template contains exactly one %s placeholder for the commit
// hash. Combinations pairing a 32-bit architecture with multilib mode are
// excluded (32-bit multilib is unsupported). Output order follows the table
// iteration order and is deterministic.
func Generate(m TargetMatrix) []string {
	var combos []string
	for _, libc := range m.Libc {
		for _, arch := range m.Arch {
			for _, mode := range m.Multilib {
				if strings.Contains(arch, "rv32") && mode == "multilib" {
					continue
				}
				combos = append(combos, strings.Join([]string{libc, arch, mode}, "-"))
			}
		}
	}

	names := make([]string, 0, len(combos)*len(m.Extensions))
	for _, combo := range combos {
		for _, ext := range m.Extensions {
			// Fill the extension placeholder, keep the hash placeholder open.
			names = append(names, fmt.Sprintf(combo, ext, "%s"))
		}
	}
	return names
}

// Render substitutes the commit hash into an artifact-name template.
func Render(template, hash string) string {
	return fmt.Sprintf(template, hash)
}
