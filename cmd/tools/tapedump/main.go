// Command tapedump prints a binary tape as text, one trade per line,
// for inspection and diffing.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"main/internal/tape"
)

func main() {
	limit := flag.Int("n", 0, "stop after N records (0=all)")
	asCSV := flag.Bool("csv", false, "emit CSV with a header row")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tapedump [-n N] [-csv] tape.bin")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if *asCSV {
		fmt.Fprintln(out, "time,trade_id,price,amount,side")
	}

	r := bufio.NewReader(f)
	buf := make([]byte, tape.RecordSize)
	count := 0
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF {
				break
			}
			fmt.Fprintf(os.Stderr, "record %d: %v\n", count, err)
			os.Exit(1)
		}
		rec, err := tape.DecodeRecord(buf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "record %d: %v\n", count, err)
			os.Exit(1)
		}

		if *asCSV {
			fmt.Fprintf(out, "%d,%d,%s,%s,%s\n",
				rec.Time, rec.TradeID, formatFixed(rec.Price), formatFixed(rec.Amount), sideName(rec.Type))
		} else {
			fmt.Fprintf(out, "#%d id=%d %s %s @ %s\n",
				rec.Time, rec.TradeID, sideName(rec.Type), formatFixed(rec.Amount), formatFixed(rec.Price))
		}

		count++
		if *limit > 0 && count == *limit {
			break
		}
	}
}

func sideName(t uint8) string {
	switch t {
	case 'b':
		return "buy"
	case 's':
		return "sell"
	default:
		return "unknown"
	}
}

// formatFixed renders an eight-digit fixed-point value exactly, with
// trailing zeros trimmed.
func formatFixed(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / 100_000_000
	frac := v % 100_000_000
	if frac == 0 {
		return fmt.Sprintf("%s%d", sign, whole)
	}
	s := fmt.Sprintf("%08d", frac)
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	return fmt.Sprintf("%s%d.%s", sign, whole, s)
}
