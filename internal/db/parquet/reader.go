package parquet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/noveldex/internal/db"
	"github.com/kailas-cloud/noveldex/internal/domain/novel"
)

const valueBatch = 1024

// columns holds leaf column indexes by name; -1 means absent from the file.
type columns struct {
	id         int
	title      int
	genre      int
	score      int
	length     int
	lastUpdate int
	keywords   int
	synopsis   int
}

func resolveColumns(pf *parquet.File) columns {
	cols := columns{
		id: -1, title: -1, genre: -1, score: -1,
		length: -1, lastUpdate: -1, keywords: -1, synopsis: -1,
	}
	for i, path := range pf.Schema().Columns() {
		if len(path) != 1 {
			continue
		}
		switch path[0] {
		case db.ColID:
			cols.id = i
		case db.ColTitle:
			cols.title = i
		case db.ColGenre:
			cols.genre = i
		case db.ColScore:
			cols.score = i
		case db.ColLength:
			cols.length = i
		case db.ColLastUpdate:
			cols.lastUpdate = i
		case db.ColKeywords:
			cols.keywords = i
		case db.ColSynopsis:
			cols.synopsis = i
		}
	}
	return cols
}

// parquetHandle wraps parquet.File + underlying os.File for proper cleanup.
type parquetHandle struct {
	pf   *parquet.File
	file *os.File
}

func (h *parquetHandle) Close() {
	_ = h.file.Close()
}

func openParquet(path string) (*parquetHandle, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	return &parquetHandle{pf: pf, file: f}, nil
}

// readColumn decodes one column chunk of rg and calls fn with the row position
// of every value. Columns are flat, so each value is one row; nulls are included.
func readColumn(rg parquet.RowGroup, col int, fn func(row int, v parquet.Value)) error {
	pages := rg.ColumnChunks()[col].Pages()
	defer func() { _ = pages.Close() }()

	buf := make([]parquet.Value, valueBatch)
	row := 0
	for {
		p, err := pages.ReadPage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read page: %w", err)
		}

		values := p.Values()
		for {
			n, readErr := values.ReadValues(buf)
			for i := 0; i < n; i++ {
				fn(row, buf[i])
				row++
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return fmt.Errorf("read values: %w", readErr)
			}
		}
	}
}

// scanPartition projects the narrow columns of one file. Rows with a null or
// empty id are dropped and counted.
func scanPartition(ctx context.Context, path string) (recs []novel.Record, skipped int, err error) {
	h, err := openParquet(path)
	if err != nil {
		return nil, 0, err
	}
	defer h.Close()

	cols := resolveColumns(h.pf)
	if cols.id < 0 {
		return nil, 0, fmt.Errorf("%w: %s", db.ErrColumnMissing, db.ColID)
	}

	decodeTime := timeDecoder(h.pf, cols.lastUpdate)

	type projection struct {
		col    int
		decode func(raw *novel.Raw, v parquet.Value)
	}
	projections := []projection{
		{cols.id, func(raw *novel.Raw, v parquet.Value) { raw.ID = stringValue(v) }},
		{cols.title, func(raw *novel.Raw, v parquet.Value) { raw.Title = stringPtr(v) }},
		{cols.genre, func(raw *novel.Raw, v parquet.Value) { raw.Genre = stringPtr(v) }},
		{cols.score, func(raw *novel.Raw, v parquet.Value) { raw.Score = intPtr(v) }},
		{cols.length, func(raw *novel.Raw, v parquet.Value) { raw.Length = intPtr(v) }},
		{cols.lastUpdate, func(raw *novel.Raw, v parquet.Value) { raw.LastUpdate = decodeTime(v) }},
		{cols.keywords, func(raw *novel.Raw, v parquet.Value) { raw.Keywords = stringPtr(v) }},
	}

	for _, rg := range h.pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("scan canceled: %w", err)
		}

		raws := make([]novel.Raw, rg.NumRows())
		for _, p := range projections {
			if p.col < 0 {
				continue
			}
			err := readColumn(rg, p.col, func(row int, v parquet.Value) {
				if row < len(raws) {
					p.decode(&raws[row], v)
				}
			})
			if err != nil {
				return nil, 0, err
			}
		}

		for i := range raws {
			rec, err := novel.New(raws[i])
			if err != nil {
				skipped++
				continue
			}
			recs = append(recs, rec)
		}
	}
	return recs, skipped, nil
}

// fetchPartition reads the synopsis of the wanted ids from one file. Row groups
// are ruled out by bloom filter when the file has one, then by the id column;
// the synopsis chunk is decoded only for row groups with a hit.
func fetchPartition(ctx context.Context, path string, want map[string]struct{}) (map[string]novel.Detail, error) {
	h, err := openParquet(path)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	cols := resolveColumns(h.pf)
	if cols.id < 0 {
		return nil, fmt.Errorf("%w: %s", db.ErrColumnMissing, db.ColID)
	}
	if cols.synopsis < 0 {
		return nil, fmt.Errorf("%w: %s", db.ErrColumnMissing, db.ColSynopsis)
	}

	out := make(map[string]novel.Detail)
	for _, rg := range h.pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetch canceled: %w", err)
		}
		if !mayContain(rg.ColumnChunks()[cols.id], want) {
			continue
		}

		hits := make(map[int]string)
		err := readColumn(rg, cols.id, func(row int, v parquet.Value) {
			if v.IsNull() {
				return
			}
			id := stringValue(v)
			if _, ok := want[id]; ok {
				hits[row] = id
			}
		})
		if err != nil {
			return nil, err
		}
		if len(hits) == 0 {
			continue
		}

		err = readColumn(rg, cols.synopsis, func(row int, v parquet.Value) {
			id, ok := hits[row]
			if !ok {
				return
			}
			if _, dup := out[id]; dup {
				return
			}
			out[id] = novel.NewDetail(id, stringValue(v))
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mayContain reports whether the id chunk can hold any wanted id.
// Chunks without a bloom filter always may.
func mayContain(chunk parquet.ColumnChunk, want map[string]struct{}) bool {
	bf := chunk.BloomFilter()
	if bf == nil {
		return true
	}
	for id := range want {
		ok, err := bf.Check(parquet.ValueOf(id))
		if err != nil || ok {
			return true
		}
	}
	return false
}

// stringValue copies v out of the page buffer; null decodes to "".
func stringValue(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	return strings.Clone(v.String())
}

func stringPtr(v parquet.Value) *string {
	if v.IsNull() {
		return nil
	}
	s := strings.Clone(v.String())
	return &s
}

// intPtr accepts any numeric physical type; scores stored as doubles (NaN for
// missing) come out of some exporters.
func intPtr(v parquet.Value) *int64 {
	if v.IsNull() {
		return nil
	}
	var n int64
	switch v.Kind() {
	case parquet.Int32:
		n = int64(v.Int32())
	case parquet.Int64:
		n = v.Int64()
	case parquet.Float:
		f := v.Float()
		if math.IsNaN(float64(f)) {
			return nil
		}
		n = int64(f)
	case parquet.Double:
		f := v.Double()
		if math.IsNaN(f) {
			return nil
		}
		n = int64(f)
	case parquet.ByteArray:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v.String()), 10, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// timeDecoder picks the decoding of the last-update column from its logical
// type: int64 timestamps honor the declared unit (millis when undeclared),
// int32 is a DATE, strings are parsed as UTC.
func timeDecoder(pf *parquet.File, col int) func(parquet.Value) time.Time {
	unit := time.Millisecond
	if col >= 0 {
		schema := pf.Schema()
		if leaf, ok := schema.Lookup(schema.Columns()[col]...); ok {
			if lt := leaf.Node.Type().LogicalType(); lt != nil && lt.Timestamp != nil {
				switch {
				case lt.Timestamp.Unit.Nanos != nil:
					unit = time.Nanosecond
				case lt.Timestamp.Unit.Micros != nil:
					unit = time.Microsecond
				}
			}
		}
	}

	return func(v parquet.Value) time.Time {
		if v.IsNull() {
			return time.Time{}
		}
		switch v.Kind() {
		case parquet.Int64:
			return time.Unix(0, v.Int64()*int64(unit)).UTC()
		case parquet.Int32:
			return time.Unix(int64(v.Int32())*86400, 0).UTC()
		case parquet.ByteArray:
			s := v.String()
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return t
				}
			}
		}
		return time.Time{}
	}
}
