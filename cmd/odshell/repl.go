package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/gpcc-project/gpcc/cood"
	"github.com/gpcc-project/gpcc/osal"
	"github.com/gpcc-project/gpcc/stream"
)

// REPL is an interactive session over one in-process object
// dictionary, in the spirit of a CANopen SDO command-line client: list
// objects, read a subindex, write a subindex.
type REPL struct {
	od     *cood.ObjectDictionary
	thread *osal.Thread
	cfg    Config
	liner  *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".odshell_history"
	}

	return filepath.Join(home, ".odshell_history")
}

func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("odshell - CANopen object dictionary shell (node_id=%d, log_level=%s)\n", r.cfg.NodeID, r.cfg.LogLevel)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("odshell> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "ls", "list":
			r.cmdList()

		case "info":
			r.cmdInfo(args)

		case "get":
			r.cmdGet(args)

		case "set":
			r.cmdSet(args)

		default:
			fmt.Printf("unknown command: %s (type 'help')\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *REPL) saveHistory() {
	if f, err := os.Create(historyFile()); err == nil {
		r.liner.WriteHistory(f)
		f.Close()
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{"help", "ls", "info", "get", "set", "exit", "quit"}

	var matches []string

	for _, c := range commands {
		if strings.HasPrefix(c, line) {
			matches = append(matches, c)
		}
	}

	return matches
}

func (r *REPL) printHelp() {
	fmt.Println(`Commands:
  ls                        List every registered object
  info <index>              Show an object's subindex layout
  get <index> <subidx>      Read a subindex
  set <index> <subidx> <v>  Write a subidx as a decimal/hex integer
  help                      Show this help
  exit / quit / q           Exit`)
}

func (r *REPL) cmdList() {
	p, ok := r.od.GetFirstObject(r.thread)
	if !ok {
		fmt.Println("(empty dictionary)")

		return
	}

	for {
		obj := p.Object()
		fmt.Printf("0x%04X  %-6s  %s\n", p.Index(), obj.GetObjectCode(), obj.GetObjectName())

		if !p.Next() {
			break
		}
	}
}

func (r *REPL) cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: info <index>")

		return
	}

	index, err := parseIndex(args[0])
	if err != nil {
		fmt.Println(err)

		return
	}

	p, ok := r.od.GetObject(r.thread, index)
	if !ok {
		fmt.Printf("0x%04X: no such object\n", index)

		return
	}
	defer p.Release()

	obj := p.Object()
	fmt.Printf("0x%04X %s (%s)\n", index, obj.GetObjectName(), obj.GetObjectCode())

	n := obj.GetNbOfSubIndices()
	for si := uint16(0); si < n; si++ {
		dt, err := obj.GetSubIdxDataType(uint8(si))
		if err != nil {
			continue
		}

		attr, _ := obj.GetSubIdxAttributes(uint8(si))
		name, _ := obj.GetSubIdxName(uint8(si))
		fmt.Printf("  SI%d  %-12s %-12s %s\n", si, dt, accessString(attr), name)
	}
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: get <index> <subidx>")

		return
	}

	index, err := parseIndex(args[0])
	if err != nil {
		fmt.Println(err)

		return
	}

	subIdx, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		fmt.Println("invalid subindex:", err)

		return
	}

	p, ok := r.od.GetObject(r.thread, index)
	if !ok {
		fmt.Printf("0x%04X: no such object\n", index)

		return
	}
	defer p.Release()

	obj := p.Object()
	unlock := obj.Lock()
	defer unlock()

	var buf bytes.Buffer

	w := stream.NewWriter(&buf, stream.LittleEndian)

	code := obj.Read(uint8(subIdx), cood.AttrAccessRD, w)
	if code != cood.OK {
		fmt.Println("abort:", code)

		return
	}

	if err := w.Close(); err != nil {
		fmt.Println("error:", err)

		return
	}

	fmt.Printf("% X\n", buf.Bytes())
}

func (r *REPL) cmdSet(args []string) {
	if len(args) < 3 {
		fmt.Println("usage: set <index> <subidx> <value>")

		return
	}

	index, err := parseIndex(args[0])
	if err != nil {
		fmt.Println(err)

		return
	}

	subIdx, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		fmt.Println("invalid subindex:", err)

		return
	}

	value, err := strconv.ParseInt(args[2], 0, 64)
	if err != nil {
		fmt.Println("invalid value:", err)

		return
	}

	p, ok := r.od.GetObject(r.thread, index)
	if !ok {
		fmt.Printf("0x%04X: no such object\n", index)

		return
	}
	defer p.Release()

	obj := p.Object()

	dt, err := obj.GetSubIdxDataType(uint8(subIdx))
	if err != nil {
		fmt.Println(err)

		return
	}

	var buf bytes.Buffer

	w := stream.NewWriter(&buf, stream.LittleEndian)
	if err := cood.EncodeNativeToStream(w, dt, 1, false, encodeIntNative(dt, value)); err != nil {
		fmt.Println("encode error:", err)

		return
	}

	if err := w.Close(); err != nil {
		fmt.Println("encode error:", err)

		return
	}

	unlock := obj.Lock()
	defer unlock()

	reader := stream.NewReader(bytes.NewReader(buf.Bytes()), stream.LittleEndian)

	code := obj.Write(uint8(subIdx), cood.AttrAccessWR, reader)
	if code != cood.OK {
		fmt.Println("abort:", code)

		return
	}

	fmt.Println("ok")
}

func parseIndex(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", s, err)
	}

	return uint16(v), nil
}

func accessString(a cood.Attr) string {
	switch {
	case a&cood.AttrAccessRW == cood.AttrAccessRW:
		return "rw"
	case a&cood.AttrAccessRD != 0:
		return "ro"
	case a&cood.AttrAccessWR != 0:
		return "wo"
	default:
		return "--"
	}
}

// encodeIntNative lays out v as the native little-endian bytes
// EncodeNativeToStream expects for an integer/unsigned data type.
func encodeIntNative(dt cood.DataType, v int64) []byte {
	buf := make([]byte, 8)

	switch dt {
	case cood.Boolean:
		if v != 0 {
			buf[0] = 1
		}
	default:
		u := uint64(v)
		for i := range buf {
			buf[i] = byte(u)
			u >>= 8
		}
	}

	return buf
}
