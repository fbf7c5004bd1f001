package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mav-playback/models"
	"mav-playback/utils"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

var testViews = [models.NumViews]string{"/d/cam1", "/d/cam0", "/d/cam4", "/d/cam3"}

// ---------------------------------------------------------------------------
// LoadTimestampIndex
// ---------------------------------------------------------------------------

func TestLoadTimestampIndex(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "times.txt", "1403636579763555584\n1403636579813555456\r\n\n1403636579863555584\n")

	frames, err := LoadTimestampIndex(path, testViews, ".png")
	require.NoError(t, err)
	require.Len(t, frames, 3)

	f := frames[1]
	assert.Equal(t, 1, f.Index)
	assert.Equal(t, "1403636579813555456", f.Token)
	assert.InDelta(t, 1403636579.813555456, f.Timestamp, 1e-6)
	assert.Equal(t, [models.NumViews]string{
		"/d/cam1/1403636579813555456.png",
		"/d/cam0/1403636579813555456.png",
		"/d/cam4/1403636579813555456.png",
		"/d/cam3/1403636579813555456.png",
	}, f.Paths)
	assert.Equal(t, 2, frames[2].Index, "blank lines do not take an index")
}

func TestLoadTimestampIndexDefaultsExtension(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "times.txt", "100\n")
	frames, err := LoadTimestampIndex(path, testViews, "")
	require.NoError(t, err)
	assert.Equal(t, "/d/cam1/100.png", frames[0].Paths[0])
}

func TestLoadTimestampIndexIsRepeatable(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "times.txt", "100\n200\n300\n")
	a, err := LoadTimestampIndex(path, testViews, ".png")
	require.NoError(t, err)
	b, err := LoadTimestampIndex(path, testViews, ".png")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLoadTimestampIndexErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("bad token", func(t *testing.T) {
		path := writeFile(t, dir, "bad.txt", "100\nnot-a-number\n")
		_, err := LoadTimestampIndex(path, testViews, ".png")
		require.Error(t, err)
		assert.ErrorIs(t, err, utils.ErrParse)
		var pe *utils.PlaybackError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 2, pe.Line)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTimestampIndex(filepath.Join(dir, "nope.txt"), testViews, ".png")
		assert.ErrorIs(t, err, utils.ErrDatasetIntegrity)
	})

	t.Run("empty file loads no frames", func(t *testing.T) {
		path := writeFile(t, dir, "empty.txt", "")
		frames, err := LoadTimestampIndex(path, testViews, ".png")
		require.NoError(t, err)
		assert.Empty(t, frames)
	})
}

// ---------------------------------------------------------------------------
// LoadInertialLog
// ---------------------------------------------------------------------------

const imuLog = `#timestamp [ns],w_RS_S_x [rad s^-1],w_RS_S_y [rad s^-1],w_RS_S_z [rad s^-1],a_RS_S_x [m s^-2],a_RS_S_y [m s^-2],a_RS_S_z [m s^-2]
1403636579758555392,-0.099134701513277898,0.14730578886832138,0.02722713633111154,8.1476917083333333,-0.37592158333333331,-2.4026292499999999

1403636579763555584,-0.099134701513277898,0.14032447186034408,0.029321531433504122,8.033280791666666,-0.40861041666666664,-2.4026292499999999
`

func TestLoadInertialLog(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "data.csv", imuLog)
	samples, err := LoadInertialLog(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	s := samples[0]
	assert.InDelta(t, 1403636579.758555392, s.Timestamp, 1e-6)
	assert.InDelta(t, -0.0991347, s.Gyro.X, 1e-6)
	assert.InDelta(t, 0.0272271, s.Gyro.Z, 1e-6)
	assert.InDelta(t, 8.1476917, s.Accel.X, 1e-5)
	assert.InDelta(t, -2.4026292, s.Accel.Z, 1e-5)
	assert.Less(t, samples[0].Timestamp, samples[1].Timestamp)
}

func TestLoadInertialLogErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"non-numeric timestamp", "abc,1,2,3,4,5,6\n", 1},
		{"non-numeric axis", "#h\n100,1,2,x,4,5,6\n", 2},
		{"short row", "100,1,2,3\n", 1},
		{"long row", "100,1,2,3,4,5,6,7\n", 1},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, filepath.Join("case", string(rune('a'+i))+".csv"), tt.content)
			_, err := LoadInertialLog(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, utils.ErrParse)
			var pe *utils.PlaybackError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
		})
	}

	_, err := LoadInertialLog(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, utils.ErrDatasetIntegrity)
}
