package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mav-playback/models"
	"mav-playback/utils"
)

// imuFields is the column count of an inertial log row:
// timestamp_ns, gyro_x, gyro_y, gyro_z, accel_x, accel_y, accel_z.
const imuFields = 7

// LoadInertialLog parses a comma-separated inertial log into samples in
// file order. Lines starting with '#' are comments. Any malformed row
// aborts the load with a parse error naming the line.
func LoadInertialLog(path string) ([]models.InertialSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.DatasetIntegrityError(path, fmt.Errorf("open inertial log: %w", err))
	}
	defer f.Close()

	samples := make([]models.InertialSample, 0, 5000)
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		s, err := parseInertialRow(line)
		if err != nil {
			return nil, utils.ParseError(path, lineNum, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, utils.DatasetIntegrityError(path, fmt.Errorf("read inertial log: %w", err))
	}

	return samples, nil
}

func parseInertialRow(line string) (models.InertialSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != imuFields {
		return models.InertialSample{}, fmt.Errorf("expected %d fields, got %d", imuFields, len(parts))
	}

	ts, err := utils.NanoTokenToSeconds(strings.TrimSpace(parts[0]))
	if err != nil {
		return models.InertialSample{}, fmt.Errorf("timestamp %q: %w", parts[0], err)
	}

	var axes [imuFields - 1]float32
	for i := range axes {
		raw := strings.TrimSpace(parts[i+1])
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return models.InertialSample{}, fmt.Errorf("field %d %q: %w", i+2, raw, err)
		}
		axes[i] = float32(v)
	}

	// source order is gyro then accel
	return models.InertialSample{
		Timestamp: ts,
		Accel:     models.Vec3f{X: axes[3], Y: axes[4], Z: axes[5]},
		Gyro:      models.Vec3f{X: axes[0], Y: axes[1], Z: axes[2]},
	}, nil
}
