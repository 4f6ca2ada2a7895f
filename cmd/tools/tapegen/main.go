// Command tapegen converts exported trade history, CSV or JSONL, into
// the packed binary tape the simulators replay. Rows are deduplicated
// by trade id and sorted by time so the output satisfies the replay
// ordering requirement.
package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yanun0323/decimal"
	"github.com/yanun0323/logs"

	"main/internal/tape"
)

type jsonTrade struct {
	Time    int32           `json:"time"`
	TradeID uint32          `json:"tradeId"`
	Price   decimal.Decimal `json:"price"`
	Amount  decimal.Decimal `json:"amount"`
	Side    string          `json:"side"`
}

func main() {
	output := flag.String("o", "data.bin", "output tape path")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tapegen [-o tape.bin] trades.csv [trades.jsonl ...]")
		os.Exit(2)
	}

	var records []tape.Record
	known := make(map[uint32]struct{})

	for _, path := range flag.Args() {
		f, err := os.Open(path)
		if err != nil {
			logs.Errorf("open %s: %v", path, err)
			os.Exit(1)
		}

		var parsed []tape.Record
		if strings.HasSuffix(path, ".jsonl") || strings.HasSuffix(path, ".json") {
			parsed, err = parseJSONL(f)
		} else {
			parsed, err = parseCSV(f)
		}
		_ = f.Close()
		if err != nil {
			logs.Errorf("parse %s: %v", path, err)
			os.Exit(1)
		}

		dups := 0
		for _, r := range parsed {
			if _, ok := known[r.TradeID]; ok {
				dups++
				continue
			}
			known[r.TradeID] = struct{}{}
			records = append(records, r)
		}
		logs.Infof("%s: %d trades, %d duplicates dropped", path, len(parsed), dups)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Time != records[j].Time {
			return records[i].Time < records[j].Time
		}
		return records[i].TradeID < records[j].TradeID
	})

	out, err := os.Create(*output)
	if err != nil {
		logs.Errorf("create %s: %v", *output, err)
		os.Exit(1)
	}
	w := tape.NewWriter(out)
	for _, r := range records {
		if err := w.Append(r); err != nil {
			logs.Errorf("write record: %v", err)
			os.Exit(1)
		}
	}
	if err := w.Flush(); err != nil {
		logs.Errorf("flush tape: %v", err)
		os.Exit(1)
	}
	if err := out.Close(); err != nil {
		logs.Errorf("close tape: %v", err)
		os.Exit(1)
	}
	logs.Infof("%s: %d records", *output, len(records))
}

// parseCSV reads rows of time, trade id, price, amount, side. The
// first row is assumed to be a header and is dropped.
func parseCSV(r io.Reader) ([]tape.Record, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rows = rows[1:]

	records := make([]tape.Record, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("short row: %v", row)
		}
		rec, err := buildRecord(row[0], row[1], row[2], row[3], row[4])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseJSONL(r io.Reader) ([]tape.Record, error) {
	var records []tape.Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var jt jsonTrade
		if err := json.Unmarshal([]byte(line), &jt); err != nil {
			return nil, err
		}
		price, err := scaleDecimal(jt.Price.String())
		if err != nil {
			return nil, err
		}
		amount, err := scaleDecimal(jt.Amount.String())
		if err != nil {
			return nil, err
		}
		records = append(records, tape.Record{
			Time:    jt.Time,
			TradeID: jt.TradeID,
			Price:   price,
			Amount:  amount,
			Type:    sideCode(jt.Side),
		})
	}
	return records, sc.Err()
}

func buildRecord(timeStr, idStr, priceStr, amountStr, side string) (tape.Record, error) {
	ts, err := strconv.ParseInt(timeStr, 10, 32)
	if err != nil {
		return tape.Record{}, fmt.Errorf("bad time %q: %w", timeStr, err)
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return tape.Record{}, fmt.Errorf("bad trade id %q: %w", idStr, err)
	}
	price, err := scaleDecimal(priceStr)
	if err != nil {
		return tape.Record{}, err
	}
	amount, err := scaleDecimal(amountStr)
	if err != nil {
		return tape.Record{}, err
	}
	return tape.Record{
		Time:    int32(ts),
		TradeID: uint32(id),
		Price:   price,
		Amount:  amount,
		Type:    sideCode(side),
	}, nil
}

func sideCode(s string) uint8 {
	if s == "" {
		return ' '
	}
	return s[0]
}

// scaleDecimal converts a decimal string into fixed point with eight
// fractional digits, without going through float64.
func scaleDecimal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 8 {
		fracPart = fracPart[:8]
	}
	fracPart += strings.Repeat("0", 8-len(fracPart))

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad decimal %q: %w", s, err)
	}
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad decimal %q: %w", s, err)
	}

	v := whole*100_000_000 + frac
	if neg {
		v = -v
	}
	return v, nil
}
