package domain

// RawTable is one uploaded tabular dataset: a header row plus string
// cells, with all format decoding already done. Column names are kept
// verbatim; the schema normalizer owns lowercasing and matching.
type RawTable struct {
	Name    string     // source file name, carried into Transaction.SourceFile
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col), tolerating ragged rows.
func (t *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// FileOutcome classifies the per-file ingestion result
type FileOutcome string

const (
	FileOK          FileOutcome = "ok"
	FileNoValidRows FileOutcome = "no-valid-rows"
	FileError       FileOutcome = "error"
)

// FileStatus is the per-file entry of the ingestion status summary.
type FileStatus struct {
	File    string      `json:"file"`
	Outcome FileOutcome `json:"outcome"`
	Rows    int         `json:"rows"`             // admitted rows (pre-dedupe)
	Reason  string      `json:"reason,omitempty"` // populated for FileError
}

func (s FileStatus) String() string {
	switch s.Outcome {
	case FileOK:
		return s.File + ": ok"
	case FileNoValidRows:
		return s.File + ": no-valid-rows"
	default:
		return s.File + ": error:" + s.Reason
	}
}

// IngestResult summarizes one upload-and-index cycle.
type IngestResult struct {
	Statuses     []FileStatus `json:"statuses"`
	Transactions int          `json:"transactions"` // stored after dedupe
	Indexed      int          `json:"indexed"`      // documents in the rebuilt index
}
