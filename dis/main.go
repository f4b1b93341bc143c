package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/newhook/beebgo/dis/disassembler"
)

// flatMemory is a bare 64 KiB address space satisfying disassembler.Bus,
// for disassembling a raw binary dump with no machine behind it.
type flatMemory [0x10000]uint8

func (m *flatMemory) Read(address uint16) uint8 { return m[address] }

func main() {
	inputFile := flag.String("i", "", "Input binary file")
	startAddr := flag.String("a", "", "Start address")
	flag.Parse()

	addrStr := *startAddr
	if strings.HasPrefix(addrStr, "$") {
		addrStr = "0x" + addrStr[1:]
	}
	startAddrInt, err := strconv.ParseUint(addrStr, 0, 16)
	if err != nil {
		fmt.Printf("Error parsing start address: %v\n", err)
		os.Exit(1)
	}

	var mem flatMemory
	length, err := loadBinary(&mem, *inputFile, int(startAddrInt))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(disassembler.DisassembleMemory(&mem, int(startAddrInt), length))
}

// loadBinary copies filename into mem at startAddr, with no reset/IRQ
// vector setup: this tool only disassembles, it never executes the image.
func loadBinary(mem *flatMemory, filename string, startAddr int) (int, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read binary file: %w", err)
	}

	if startAddr+len(data) > len(mem) {
		return 0, fmt.Errorf("binary file too large for available memory")
	}

	for i, b := range data {
		mem[startAddr+i] = b
	}

	return len(data), nil
}
