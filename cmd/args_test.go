package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mav-playback/utils"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		seqs   []sequenceArg
		prefix string
	}{
		{
			name:   "single sequence default prefix",
			args:   []string{"voc.txt", "set.yaml", "/data/MH01", "MH01.txt"},
			seqs:   []sequenceArg{{"/data/MH01", "MH01.txt"}},
			prefix: "test",
		},
		{
			name:   "single sequence with prefix",
			args:   []string{"voc.txt", "set.yaml", "/data/MH01", "MH01.txt", "mh01"},
			seqs:   []sequenceArg{{"/data/MH01", "MH01.txt"}},
			prefix: "mh01",
		},
		{
			name: "two sequences with prefix",
			args: []string{"voc.txt", "set.yaml", "/d/MH01", "t1.txt", "/d/MH02", "t2.txt", "batch"},
			seqs: []sequenceArg{
				{"/d/MH01", "t1.txt"},
				{"/d/MH02", "t2.txt"},
			},
			prefix: "batch",
		},
		{
			name: "two sequences default prefix",
			args: []string{"voc.txt", "set.yaml", "/d/MH01", "t1.txt", "/d/MH02", "t2.txt"},
			seqs: []sequenceArg{
				{"/d/MH01", "t1.txt"},
				{"/d/MH02", "t2.txt"},
			},
			prefix: "test",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra, err := parseArgs(tt.args)
			require.NoError(t, err)
			assert.Equal(t, "voc.txt", ra.Vocabulary)
			assert.Equal(t, "set.yaml", ra.Settings)
			assert.Equal(t, tt.seqs, ra.Sequences)
			assert.Equal(t, tt.prefix, ra.Prefix)
		})
	}
}

func TestParseArgsTooFew(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{nil, {"voc"}, {"voc", "set", "/d/MH01"}} {
		_, err := parseArgs(args)
		require.Error(t, err)
		assert.ErrorIs(t, err, utils.ErrConfiguration)
	}

	_, err := parseArgs([]string{"voc", "set", "/d", "t.txt", ""})
	assert.ErrorIs(t, err, utils.ErrConfiguration)
}
