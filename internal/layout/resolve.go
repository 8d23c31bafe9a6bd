package layout

import (
	"fmt"
	"os"
)

// Mode selects which size-inference rules apply during resolution.
type Mode int

const (
	ModeUnpack Mode = iota
	ModePack
)

// TotalSize reports the image extent used by the resolver. In unpack mode
// this is the size of the source firmware file; in pack mode it is the
// largest offset+size among explicitly sized parts, zero when none exist.
func TotalSize(parts []Part, mode Mode, imagePath string) (uint64, error) {
	if mode == ModeUnpack {
		info, err := os.Stat(imagePath)
		if err != nil {
			return 0, fmt.Errorf("stat firmware file: %w", err)
		}
		return uint64(info.Size()), nil
	}
	var total uint64
	for _, part := range parts {
		if part.ExplicitSize && part.Offset+part.Size > total {
			total = part.Offset + part.Size
		}
	}
	return total, nil
}

// Resolve fills in the size of every part that lacks an explicit one,
// mutating the slice in place. For each unresolved part, in declaration
// order:
//
//  1. a part with a successor takes the gap to the next part's offset
//     (no bounds check; a misordered layout yields whatever the
//     subtraction produces),
//  2. the last part under unpack takes the remainder of the image,
//  3. the last part under pack takes the size of its companion file,
//     or stays zero with a warning when the file cannot be statted.
func Resolve(parts []Part, mode Mode, totalSize uint64) {
	for i := range parts {
		if parts[i].ExplicitSize {
			continue
		}
		switch {
		case i < len(parts)-1:
			parts[i].Size = parts[i+1].Offset - parts[i].Offset
		case mode == ModeUnpack && totalSize > 0:
			parts[i].Size = totalSize - parts[i].Offset
		case mode == ModePack:
			info, err := os.Stat(PartFileName(parts[i].Name))
			if err != nil {
				fmt.Printf("Warning: Could not determine size for last part '%s'\n", parts[i].Name)
				continue
			}
			parts[i].Size = uint64(info.Size())
		}
	}
}
