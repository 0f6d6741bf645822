package bytesort

import (
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"bytesort/internal/scan"
)

// PartitionStat is the per-worker part of a Report.
type PartitionStat struct {
	Index  int   `json:"index"`
	Offset int64 `json:"offset"`
	Quota  int64 `json:"quota"`
	Read   int64 `json:"read"`
}

// Report summarizes a completed run.
type Report struct {
	Source       string          `json:"source"`
	Dest         string          `json:"dest"`
	Workers      int             `json:"workers"`
	Order        string          `json:"order"`
	HeaderBytes  int64           `json:"header_bytes"`
	PayloadBytes int64           `json:"payload_bytes"`
	Partitions   []PartitionStat `json:"partitions"`
	HeaderXXH3   uint64          `json:"header_xxh3"`
	OutputBLAKE3 string          `json:"output_blake3"`
	Elapsed      time.Duration   `json:"elapsed_ns"`
}

func partitionStats(stats []scan.Stat) []PartitionStat {
	out := make([]PartitionStat, len(stats))
	for i, st := range stats {
		out[i] = PartitionStat{
			Index:  st.Index,
			Offset: st.Offset,
			Quota:  st.Quota,
			Read:   st.Read,
		}
	}
	return out
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(r), "encode report")
}
