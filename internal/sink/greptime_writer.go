package sink

import (
	"context"
	"net"
	"strconv"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"fieldtrack/internal/geo"
)

// GreptimeWriter records fix rows in GreptimeDB via the ingester client.
type GreptimeWriter struct {
	client *greptime.Client
	db     string
	table  string
}

// NewGreptimeWriter creates the writer. The ingester library has no SQL/DDL
// support, so the table is auto-created by GreptimeDB on first write (the
// intended ttl='90d' cannot be applied from here).
func NewGreptimeWriter(endpoint, database string) (*GreptimeWriter, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		host = endpoint
		portStr = ""
	}
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, err
		}
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &GreptimeWriter{
		client: client,
		db:     database,
		table:  geo.FixTableName,
	}, nil
}

// Write inserts a single fix row.
func (w *GreptimeWriter) Write(row geo.FixRow) error {
	return w.WriteBatch([]geo.FixRow{row})
}

// WriteBatch inserts multiple fix rows.
func (w *GreptimeWriter) WriteBatch(rows []geo.FixRow) error {
	if len(rows) == 0 {
		return nil
	}

	ctx := ingesterContext.New(context.Background())

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("device_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("session_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("lat", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("lon", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("alt", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("accuracy", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("received_at", types.TIMESTAMP); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP); err != nil {
		return err
	}

	for _, r := range rows {
		alt, acc := 0.0, 0.0
		if r.Alt != nil {
			alt = *r.Alt
		}
		if r.Accuracy != nil {
			acc = *r.Accuracy
		}
		if err := tbl.AddRow(r.DeviceID, r.SessionID, r.Lat, r.Lon, alt, acc, r.ReceivedAt, r.Timestamp); err != nil {
			return err
		}
	}

	_, err = w.client.Write(ctx, tbl)
	return err
}
