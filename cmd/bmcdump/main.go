// Package main provides a command-line inspector for block-mesh
// container files: it prints the group tree and can hex-dump a single
// group's payload, the same way the teacher's dump_hdf5 utility
// inspected raw HDF5 files before this format existed.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/scigolib/blockmesh/internal/container"
)

func main() {
	group := flag.String("group", "", "dot-separated path of the group to hex-dump, e.g. Base.Zone0.GridCoordinates.CoordinateX")
	length := flag.Int("length", 64, "number of payload bytes to dump")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: bmcdump [flags] <file.bmc>")
		fmt.Println("Flags:")
		flag.PrintDefaults()
		return
	}

	root, err := container.Open(args[0])
	if err != nil {
		log.Fatalf("failed to open container: %v", err)
	}

	if *group == "" {
		printTree(root, 0)
		return
	}

	target := find(root, strings.Split(*group, "."))
	if target == nil {
		log.Fatalf("group %q not found", *group)
	}
	if !target.HasData {
		fmt.Printf("%s has no payload dataset\n", *group)
		return
	}
	hexDump(target.Data, *length)
}

func printTree(g *container.GroupHandle, depth int) {
	indent := strings.Repeat("  ", depth)
	size := 0
	if g.HasData {
		size = len(g.Data)
	}
	name := g.Name
	if name == "" {
		name = "(root)"
	}
	fmt.Printf("%s%s [%s/%s] bytes=%d\n", indent, name, g.Label, g.Type, size)
	for _, child := range g.Children {
		printTree(child, depth+1)
	}
}

func find(g *container.GroupHandle, path []string) *container.GroupHandle {
	cur := g
	for _, name := range path {
		cur = cur.Find(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// hexDump prints up to length bytes of buf in the classic offset / hex /
// ASCII layout.
func hexDump(buf []byte, length int) {
	if length > len(buf) {
		length = len(buf)
	}
	chunk := buf[:length]

	for i := 0; i < len(chunk); i += 16 {
		end := i + 16
		if end > len(chunk) {
			end = len(chunk)
		}
		row := chunk[i:end]

		fmt.Printf("%08x: ", i)
		for j := 0; j < 16; j++ {
			if j < len(row) {
				fmt.Printf("%02x ", row[j])
			} else {
				fmt.Print("   ")
			}
			if j == 7 {
				fmt.Print(" ")
			}
		}
		fmt.Print(" |")
		for _, b := range row {
			if b >= 32 && b <= 126 {
				fmt.Printf("%c", b)
			} else {
				fmt.Print(".")
			}
		}
		fmt.Println("|")
	}
}
