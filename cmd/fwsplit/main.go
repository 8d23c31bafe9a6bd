package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"example.com/fwsplit/internal/common"
	"example.com/fwsplit/internal/image"
	"example.com/fwsplit/internal/layout"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 3 {
		usage()
		return 0
	}
	mode := args[0]
	firmwarePath := args[1]
	layoutPath := args[2]

	resolveMode := layout.ModePack
	if mode == "unpack" {
		resolveMode = layout.ModeUnpack
	}

	parts, err := loadLayout(layoutPath, firmwarePath, resolveMode)
	if err != nil {
		fmt.Println("layout:", err)
		return 1
	}
	printLayout(parts)

	switch mode {
	case "unpack":
		results, err := image.Unpack(firmwarePath, parts)
		if err != nil {
			fmt.Println("unpack:", err)
			return 1
		}
		fmt.Printf("Unpacked %d part(s), %s total\n", len(results), common.FormatBytes(totalCopied(results)))
	case "pack":
		results, err := image.Pack(firmwarePath, parts)
		if err != nil {
			fmt.Println("pack:", err)
			return 1
		}
		skipped := 0
		for _, res := range results {
			if res.Skipped {
				skipped++
			}
		}
		fmt.Printf("Packed %d part(s), %s total", len(results)-skipped, common.FormatBytes(totalCopied(results)))
		if skipped > 0 {
			fmt.Printf(", %d skipped", skipped)
		}
		fmt.Println()
	default:
		usage()
	}
	return 0
}

func usage() {
	fmt.Printf(`fwsplit %s (built %s) <unpack|pack> <firmware_file> <config_file>

Commands:
  unpack  split the firmware image into per-part <name>.bin files
  pack    assemble the firmware image from per-part <name>.bin files

Config file format (one part per line):
  name, offset [, size] [, padding_byte]

Offsets and sizes accept 0x-prefixed hex or decimal. Blank lines and
lines starting with # are ignored.

Example:
  header, 0x0, 0x40
  kernel, 0x40, , 0x00     # size taken from the next part's offset
  rootfs, 0x200040         # size from the image or the part file
`, version, buildDate)
}

func loadLayout(layoutPath, firmwarePath string, mode layout.Mode) ([]layout.Part, error) {
	parts, err := layout.ParseFile(layoutPath)
	if err != nil {
		return nil, err
	}
	total, err := layout.TotalSize(parts, mode, firmwarePath)
	if err != nil {
		return nil, err
	}
	layout.Resolve(parts, mode, total)
	return parts, nil
}

func printLayout(parts []layout.Part) {
	fmt.Println("Firmware parts:")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tOFFSET\tSIZE\tPADDING")
	for _, part := range parts {
		size := fmt.Sprintf("0x%x", part.Size)
		if !part.ExplicitSize {
			size += " (auto)"
		}
		padding := fmt.Sprintf("0x%02X", part.PaddingByte)
		if !part.ExplicitPadding {
			padding += " (default)"
		}
		fmt.Fprintf(w, "%s\t0x%x\t%s\t%s\n", part.Name, part.Offset, size, padding)
	}
	w.Flush()
}

func totalCopied(results []image.PartResult) int64 {
	var total uint64
	for _, res := range results {
		total += res.BytesCopied + res.Padded
	}
	return int64(total)
}
