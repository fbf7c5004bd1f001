package models

// NumViews is the number of synchronised camera views per frame.
const NumViews = 4

// FrameRecord is one line of a sequence's timestamp file: the capture time
// and the image path for each of the four views. Records are built once by
// the timestamp loader and never mutated.
type FrameRecord struct {
	Index     int              `json:"index"`
	Token     string           `json:"token"`     // raw timestamp token, used verbatim in file names
	Timestamp float64          `json:"timestamp"` // seconds
	Paths     [NumViews]string `json:"paths"`
}

// CSVHeader returns the ordered column names for a frame index dump.
func (FrameRecord) CSVHeader() []string {
	return []string{"index", "token", "timestamp_s", "path_a", "path_b", "path_c", "path_d"}
}

// CSVRow serialises one frame record.
func (f *FrameRecord) CSVRow() []string {
	return []string{
		itoa(f.Index),
		f.Token,
		ftoa(f.Timestamp, 9),
		f.Paths[0], f.Paths[1], f.Paths[2], f.Paths[3],
	}
}
