package ingest

import (
	"fmt"
	"path/filepath"

	"mav-playback/models"
	"mav-playback/utils"
)

// Sequence is the in-memory index of one recorded dataset run: its frames
// and the full inertial stream, both in file order. Neither slice is
// modified after loading.
type Sequence struct {
	Index          int
	Folder         string
	TimestampsPath string
	IMUPath        string
	Frames         []models.FrameRecord
	Inertial       []models.InertialSample
}

// Duration returns the time spanned by the frames in seconds.
func (s *Sequence) Duration() float64 {
	if len(s.Frames) < 2 {
		return 0
	}
	return s.Frames[len(s.Frames)-1].Timestamp - s.Frames[0].Timestamp
}

// LoadSequence indexes one sequence folder. Image directories and the
// inertial log are resolved relative to folder using the dataset layout.
// A sequence without frames or without inertial samples is rejected.
func LoadSequence(index int, folder, timestampsPath string, cfg utils.DatasetConfig) (*Sequence, error) {
	var dirs [models.NumViews]string
	for v, rel := range cfg.Views.Slice() {
		dirs[v] = joinDataset(folder, rel)
	}
	imuPath := joinDataset(folder, cfg.IMUPath)

	frames, err := LoadTimestampIndex(timestampsPath, dirs, cfg.ImageExt)
	if err != nil {
		return nil, fmt.Errorf("sequence %d: %w", index, err)
	}
	samples, err := LoadInertialLog(imuPath)
	if err != nil {
		return nil, fmt.Errorf("sequence %d: %w", index, err)
	}

	if len(frames) == 0 {
		return nil, utils.DatasetIntegrityError(timestampsPath,
			fmt.Errorf("sequence %d: no frames in timestamp file", index))
	}
	if len(samples) == 0 {
		return nil, utils.DatasetIntegrityError(imuPath,
			fmt.Errorf("sequence %d: no inertial samples", index))
	}

	seq := &Sequence{
		Index:          index,
		Folder:         folder,
		TimestampsPath: timestampsPath,
		IMUPath:        imuPath,
		Frames:         frames,
		Inertial:       samples,
	}
	utils.L().Info("sequence %d indexed  (frames=%d, imu=%d, span=%.3fs)",
		index, len(frames), len(samples), seq.Duration())
	return seq, nil
}

func joinDataset(folder, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return folder + "/" + rel
}
