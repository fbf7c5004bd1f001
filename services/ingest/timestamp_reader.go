package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"mav-playback/models"
	"mav-playback/utils"
)

// LoadTimestampIndex reads a newline-delimited list of integer-nanosecond
// capture ticks and builds one FrameRecord per non-empty line. The raw
// token is used verbatim in the four image paths (<dir>/<token><ext>); its
// numeric value divided by 1e9 becomes the frame timestamp. Image files
// are not checked here; the image reader fails when it opens them.
func LoadTimestampIndex(path string, viewDirs [models.NumViews]string, ext string) ([]models.FrameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.DatasetIntegrityError(path, fmt.Errorf("open timestamp file: %w", err))
	}
	defer f.Close()

	if ext == "" {
		ext = ".png"
	}

	frames := make([]models.FrameRecord, 0, 5000)
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		tok := strings.TrimSpace(scanner.Text())
		if tok == "" {
			continue
		}

		ts, err := utils.NanoTokenToSeconds(tok)
		if err != nil {
			return nil, utils.ParseError(path, lineNum, fmt.Errorf("timestamp %q: %w", tok, err))
		}

		rec := models.FrameRecord{
			Index:     len(frames),
			Token:     tok,
			Timestamp: ts,
		}
		for v, dir := range viewDirs {
			rec.Paths[v] = dir + "/" + tok + ext
		}
		frames = append(frames, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, utils.DatasetIntegrityError(path, fmt.Errorf("read timestamp file: %w", err))
	}

	return frames, nil
}
