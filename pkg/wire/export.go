package wire

import (
	"bytes"
	"encoding/gob"

	"github.com/klauspost/compress/zstd"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
	"github.com/tradecore-io/tradecore/pkg/enums"
	"github.com/tradecore-io/tradecore/pkg/fixed"
	"github.com/tradecore-io/tradecore/pkg/identifiers"
	"github.com/tradecore-io/tradecore/pkg/orderbook"
)

// SnapshotExport is the on-disk/on-wire shape of a compressed book
// snapshot export, tagged with the schema version it was written
// under.
type SnapshotExport struct {
	SchemaVersion string
	Compressed    []byte
}

// snapshotRow is Snapshot's flat projection; unlike the event-level
// *Row types in projection.go, a snapshot already is a flat pair of depth-level
// slices, so the only projection work is stripping it of its
// fixed.Price/fixed.Quantity types down to raw integers for encoding.
type snapshotRow struct {
	InstrumentID string
	BookType     string
	Bids         []depthRow
	Asks         []depthRow
	LastUpdateID uint64
	TsLast       uint64
}

type depthRow struct {
	PriceRaw int64
	PricePrec uint8
	QtyRaw    uint64
	QtyPrec   uint8
	OrderCnt  int
}

func toDepthRows(levels []orderbook.DepthLevel) []depthRow {
	rows := make([]depthRow, len(levels))
	for i, l := range levels {
		rows[i] = depthRow{
			PriceRaw:  l.Price.Raw(),
			PricePrec: l.Price.Precision(),
			QtyRaw:    l.Quantity.Raw(),
			QtyPrec:   l.Quantity.Precision(),
			OrderCnt:  l.OrderCnt,
		}
	}
	return rows
}

// ExportSnapshot gob-encodes snap's flat projection and compresses it
// with zstd, per SPEC_FULL.md §11 ("compression of an in-memory
// projection, not the out-of-scope Parquet catalog itself").
func ExportSnapshot(snap orderbook.Snapshot) (SnapshotExport, error) {
	row := snapshotRow{
		InstrumentID: snap.InstrumentID.Value(),
		BookType:     snap.BookType.String(),
		Bids:         toDepthRows(snap.Bids),
		Asks:         toDepthRows(snap.Asks),
		LastUpdateID: snap.LastUpdateID,
		TsLast:       snap.TsLast,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(row); err != nil {
		return SnapshotExport{}, coreerrors.Wrap(coreerrors.ErrValidation, "failed to encode snapshot for export", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return SnapshotExport{}, coreerrors.Wrap(coreerrors.ErrValidation, "failed to construct zstd encoder", err)
	}
	defer enc.Close()

	return SnapshotExport{
		SchemaVersion: SchemaVersion.String(),
		Compressed:    enc.EncodeAll(buf.Bytes(), nil),
	}, nil
}

// DecodeSnapshotExport reverses ExportSnapshot for read-side
// consumers.
func DecodeSnapshotExport(export SnapshotExport) (orderbook.Snapshot, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return orderbook.Snapshot{}, coreerrors.Wrap(coreerrors.ErrValidation, "failed to construct zstd decoder", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(export.Compressed, nil)
	if err != nil {
		return orderbook.Snapshot{}, coreerrors.Wrap(coreerrors.ErrValidation, "failed to decompress snapshot export", err)
	}

	var row snapshotRow
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&row); err != nil {
		return orderbook.Snapshot{}, coreerrors.Wrap(coreerrors.ErrValidation, "failed to decode snapshot export", err)
	}

	instrumentID, err := identifiers.ParseInstrumentId(row.InstrumentID)
	if err != nil {
		return orderbook.Snapshot{}, err
	}
	bookType, err := enums.BookTypeFromString(row.BookType)
	if err != nil {
		return orderbook.Snapshot{}, err
	}
	bids, err := fromDepthRows(row.Bids)
	if err != nil {
		return orderbook.Snapshot{}, err
	}
	asks, err := fromDepthRows(row.Asks)
	if err != nil {
		return orderbook.Snapshot{}, err
	}

	return orderbook.Snapshot{
		InstrumentID: instrumentID,
		BookType:     bookType,
		Bids:         bids,
		Asks:         asks,
		LastUpdateID: row.LastUpdateID,
		TsLast:       row.TsLast,
	}, nil
}

func fromDepthRows(rows []depthRow) ([]orderbook.DepthLevel, error) {
	levels := make([]orderbook.DepthLevel, len(rows))
	for i, r := range rows {
		price, err := fixed.NewPriceFromRaw(r.PriceRaw, r.PricePrec)
		if err != nil {
			return nil, err
		}
		qty, err := fixed.NewQuantityFromRaw(r.QtyRaw, r.QtyPrec)
		if err != nil {
			return nil, err
		}
		levels[i] = orderbook.DepthLevel{Price: price, Quantity: qty, OrderCnt: r.OrderCnt}
	}
	return levels, nil
}
