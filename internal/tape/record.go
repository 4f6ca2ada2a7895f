package tape

import (
	"encoding/binary"
	"errors"

	"main/internal/model"
	"main/internal/model/enum"
)

// RecordSize is the fixed on-disk size of one trade record.
// Layout, little-endian, no padding:
//
//	time     int32
//	trade_id uint32
//	price    int64  (scaled by model.RecordUnit)
//	amount   int64  (scaled by model.RecordUnit)
//	type     uint8  ('b', 's' or ' ')
const RecordSize = 25

var ErrShortRecord = errors.New("tape: short record")

// Record is the packed trade layout as stored on disk.
type Record struct {
	Time    int32
	TradeID uint32
	Price   int64
	Amount  int64
	Type    uint8
}

// EncodeRecord appends the packed record to dst and returns the
// extended slice.
func EncodeRecord(dst []byte, r Record) []byte {
	var buf [RecordSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.Time))
	binary.LittleEndian.PutUint32(buf[4:8], r.TradeID)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(r.Price))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(r.Amount))
	buf[24] = r.Type
	return append(dst, buf[:]...)
}

// DecodeRecord parses one packed record from src.
func DecodeRecord(src []byte) (Record, error) {
	if len(src) < RecordSize {
		return Record{}, ErrShortRecord
	}
	return Record{
		Time:    int32(binary.LittleEndian.Uint32(src[0:4])),
		TradeID: binary.LittleEndian.Uint32(src[4:8]),
		Price:   int64(binary.LittleEndian.Uint64(src[8:16])),
		Amount:  int64(binary.LittleEndian.Uint64(src[16:24])),
		Type:    src[24],
	}, nil
}

// Trade converts the record to its decimal form.
func (r Record) Trade() model.Trade {
	return model.Trade{
		Time:    r.Time,
		TradeID: r.TradeID,
		Price:   model.FromRecord(r.Price),
		Amount:  model.FromRecord(r.Amount),
		Side:    enum.Side(r.Type),
	}
}

// FromTrade converts a decimal trade back to its packed form.
func FromTrade(t model.Trade) Record {
	return Record{
		Time:    t.Time,
		TradeID: t.TradeID,
		Price:   model.ToRecord(t.Price),
		Amount:  model.ToRecord(t.Amount),
		Type:    uint8(t.Side),
	}
}
