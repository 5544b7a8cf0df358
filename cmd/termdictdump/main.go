// Command termdictdump opens a single term-dictionary file and prints a
// human-readable dump of its contents: the discriminator, the key/value
// stream in order (optionally limited to a prefix), and the entry count.
// With -key it prints a single lookup instead.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Priyanshu23/flashdict/termdict"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "termdictdump:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("termdictdump", flag.ContinueOnError)
	prefix := fs.String("prefix", "", "only dump keys with this prefix")
	quiet := fs.Bool("quiet", false, "suppress the per-entry dump, print only the summary")
	key := fs.String("key", "", "look up a single key and print its TermInfo instead of dumping the stream")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: termdictdump [-prefix P] [-quiet] [-key K] <path>")
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	dict, err := termdict.Open(termdict.NewByteSliceSource(data))
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	if *key != "" {
		info, err := dict.Query([]byte(*key))
		if err != nil {
			return err
		}
		fmt.Printf("%-40q doc_freq=%-8d postings_offset=%-10d positions_offset=%-10d positions_inner_offset=%d\n",
			*key, info.DocFreq, info.PostingsOffset, info.PositionsOffset, info.PositionsInnerOffset)
		return nil
	}

	fmt.Printf("file:          %s\n", path)
	fmt.Printf("has_positions: %v\n", dict.HasPositions())

	builder := dict.Range()
	if *prefix != "" {
		builder = builder.Prefix([]byte(*prefix))
	}

	streamer, err := builder.IntoStream()
	if err != nil {
		return fmt.Errorf("range: %w", err)
	}

	count := 0
	for streamer.Advance() {
		count++
		if !*quiet {
			info := streamer.Value()
			fmt.Printf("%-40q doc_freq=%-8d postings_offset=%-10d positions_offset=%-10d positions_inner_offset=%d\n",
				streamer.Key(), info.DocFreq, info.PostingsOffset, info.PositionsOffset, info.PositionsInnerOffset)
		}
	}
	if err := streamer.Err(); err != nil {
		return fmt.Errorf("stream: %w", err)
	}

	fmt.Printf("entries:       %d\n", count)
	return nil
}
