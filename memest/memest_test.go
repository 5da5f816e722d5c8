package memest

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrencechentr/tutils/dtypes"
	"github.com/terrencechentr/tutils/shapes"
)

type fakeModel struct {
	params []Parameter
}

func (m *fakeModel) Parameters() []Parameter { return m.params }

func TestEstimateSingleFloat32(t *testing.T) {
	p, err := NewParameter("weights", "fp32", 1000, 1000)
	require.NoError(t, err)

	report, err := Estimate([]Parameter{p})
	require.NoError(t, err)
	assert.Equal(t, int64(4_000_000), report.TotalBytes)
	assert.Equal(t, "3.81MB", report.Formatted)
	assert.Equal(t, int64(4_000_000), report.ByDType[dtypes.Float32])
	assert.Equal(t, 1, report.NumTensors)
	assert.Equal(t, int64(1_000_000), report.NumTrainable)
	assert.Equal(t, int64(0), report.NumFrozen)
}

func TestEstimateByDTypeSumsToTotal(t *testing.T) {
	params := []Parameter{
		{Name: "embedding", Shape: shapes.Make(dtypes.Float16, 32000, 512), Trainable: true},
		{Name: "dense/weights", Shape: shapes.Make(dtypes.Float32, 512, 512), Trainable: true},
		{Name: "dense/bias", Shape: shapes.Make(dtypes.Float32, 512), Trainable: true},
		{Name: "step", Shape: shapes.Make(dtypes.Int64, 1), Trainable: false},
		{Name: "mask", Shape: shapes.Make(dtypes.Bool, 512, 512), Trainable: false},
	}
	report, err := Estimate(params)
	require.NoError(t, err)

	var sum int64
	for _, bytes := range report.ByDType {
		sum += bytes
	}
	assert.Equal(t, report.TotalBytes, sum)

	wantTotal := int64(32000*512*2 + 512*512*4 + 512*4 + 1*8 + 512*512)
	assert.Equal(t, wantTotal, report.TotalBytes)
	assert.Equal(t, int64(32000*512+512*512+512), report.NumTrainable)
	assert.Equal(t, int64(1+512*512), report.NumFrozen)
}

func TestEstimateUnknownPrecision(t *testing.T) {
	_, err := NewParameter("w", "fp8", 16, 16)
	require.Error(t, err)
	var unknownErr *dtypes.UnknownPrecisionError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "fp8", unknownErr.Name)

	// A parameter carrying an out-of-range dtype fails the estimation too.
	params := []Parameter{
		{Name: "w", Shape: shapes.Shape{DType: dtypes.DType(127), Dimensions: []int{4}}},
	}
	_, err = Estimate(params)
	require.Error(t, err)
	require.True(t, errors.As(err, &unknownErr))
}

func TestEstimateInvalidShape(t *testing.T) {
	params := []Parameter{
		{Name: "w", Shape: shapes.Shape{DType: dtypes.Float32, Dimensions: []int{4, 0}}},
	}
	_, err := Estimate(params)
	require.Error(t, err)
	var invalidErr *shapes.InvalidShapeError
	require.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, 1, invalidErr.Axis)

	params = []Parameter{
		{Name: "scalar", Shape: shapes.Shape{DType: dtypes.Float32}},
	}
	_, err = Estimate(params)
	require.Error(t, err)
	require.True(t, errors.As(err, &invalidErr))
}

func TestEstimateBuffersAndDevices(t *testing.T) {
	params := []Parameter{
		{Name: "w", Shape: shapes.Make(dtypes.Float32, 100), Trainable: true, Device: "cuda:0"},
		{Name: "bn/mean", Shape: shapes.Make(dtypes.Float32, 100), Buffer: true, Device: "cpu"},
	}

	report, err := Estimate(params, ByDevice())
	require.NoError(t, err)
	assert.Equal(t, int64(800), report.TotalBytes)
	assert.Equal(t, int64(400), report.ByDevice["cuda:0"])
	assert.Equal(t, int64(400), report.ByDevice["cpu"])
	assert.Equal(t, int64(100), report.NumTrainable)
	assert.Equal(t, int64(0), report.NumFrozen)

	report, err = Estimate(params, WithoutBuffers())
	require.NoError(t, err)
	assert.Equal(t, int64(400), report.TotalBytes)
	assert.Equal(t, 1, report.NumTensors)
}

func TestEstimateModel(t *testing.T) {
	m := &fakeModel{params: []Parameter{
		{Name: "w", Shape: shapes.Make(dtypes.Float64, 10, 10), Trainable: true},
	}}
	report, err := EstimateModel(m)
	require.NoError(t, err)
	assert.Equal(t, int64(800), report.TotalBytes)
}

func TestFormatBytes(t *testing.T) {
	for n, want := range map[int64]string{
		0:             "0B",
		1:             "1B",
		512:           "512B",
		1023:          "1023B",
		1024:          "1.00KB",
		4_000_000:     "3.81MB",
		1 << 30:       "1.00GB",
		5 << 40:       "5.00TB",
		1234567890123: "1.12TB",
	} {
		assert.Equalf(t, want, FormatBytes(n), "FormatBytes(%d)", n)
	}
}

func TestReportString(t *testing.T) {
	p, err := NewParameter("weights", "fp32", 1000, 1000)
	require.NoError(t, err)
	report, err := Estimate([]Parameter{p})
	require.NoError(t, err)

	rendered := report.String()
	assert.True(t, strings.Contains(rendered, "3.81MB"))
	assert.True(t, strings.Contains(rendered, "Float32"))
	assert.True(t, strings.Contains(rendered, "1,000,000"))
}
