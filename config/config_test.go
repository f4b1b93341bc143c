package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModel(t *testing.T) {
	cases := []struct {
		in   string
		want Model
	}{
		{"b", ModelB},
		{"model-b", ModelB},
		{"B", ModelB},
		{"b+", ModelBPlus},
		{"model-b-plus", ModelBPlus},
		{"master", ModelMaster128},
		{"master128", ModelMaster128},
		{"master-128", ModelMaster128},
	}
	for _, c := range cases {
		got, err := ParseModel(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestParseModelUnknown(t *testing.T) {
	_, err := ParseModel("spectrum")
	assert.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	o := Default()
	assert.Equal(t, ModelB, o.Model)
	assert.Zero(t, o.VideoBorderChars)
	assert.False(t, o.VideoInterlaceWobble)
	assert.False(t, o.FastTape)
}

func TestApplyValueOption(t *testing.T) {
	o := Default()
	require.NoError(t, o.Apply("video:border-chars=4"))
	assert.Equal(t, 4, o.VideoBorderChars)
}

func TestApplyValueOptionMissingValue(t *testing.T) {
	o := Default()
	err := o.Apply("video:border-chars")
	assert.Error(t, err)
}

func TestApplyValueOptionBadNumber(t *testing.T) {
	o := Default()
	err := o.Apply("video:border-chars=nope")
	assert.Error(t, err)
}

func TestApplyBareFlags(t *testing.T) {
	o := Default()
	require.NoError(t, o.Apply("video:interlace-wobble"))
	require.NoError(t, o.Apply("video:frame-boundaries"))
	require.NoError(t, o.Apply("fasttape"))
	require.NoError(t, o.Apply("serial:state"))
	require.NoError(t, o.Apply("serial:bytes"))
	require.NoError(t, o.Apply("cmos:all"))

	assert.True(t, o.VideoInterlaceWobble)
	assert.True(t, o.VideoFrameBoundaries)
	assert.True(t, o.FastTape)
	assert.True(t, o.LogSerialState)
	assert.True(t, o.LogSerialBytes)
	assert.True(t, o.LogCMOSAll)
}

func TestApplyUnknownOption(t *testing.T) {
	o := Default()
	err := o.Apply("video:nonsense")
	assert.Error(t, err)
}
