package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudWatch struct {
	mu     sync.Mutex
	inputs []*cloudwatch.GetMetricStatisticsInput
	points map[string][]types.Datapoint
	errs   map[string]error
}

func (f *fakeCloudWatch) GetMetricStatistics(_ context.Context, in *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)

	name := aws.ToString(in.MetricName)
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return &cloudwatch.GetMetricStatisticsOutput{Datapoints: f.points[name]}, nil
}

var windowEnd = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSource(client *fakeCloudWatch) *CloudWatchSource {
	s := NewCloudWatchSource(client, DefaultQueries("calcburst-calculator", "CalcBurstAPI"))
	s.now = func() time.Time { return windowEnd }
	return s
}

func TestCloudWatchSnapshotReadsAllSeries(t *testing.T) {
	client := &fakeCloudWatch{points: map[string][]types.Datapoint{
		"Invocations": {{Sum: aws.Float64(120), Timestamp: aws.Time(windowEnd.Add(-time.Minute))}},
		"Errors":      {{Sum: aws.Float64(4), Timestamp: aws.Time(windowEnd.Add(-time.Minute))}},
		"Duration":    {{Average: aws.Float64(35.5), Timestamp: aws.Time(windowEnd.Add(-time.Minute))}},
		"Count":       {{Sum: aws.Float64(118), Timestamp: aws.Time(windowEnd.Add(-time.Minute))}},
	}}

	snap, err := newTestSource(client).Snapshot(context.Background(), 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, Snapshot{
		SeriesInvocations: 120,
		SeriesErrors:      4,
		SeriesDuration:    35.5,
		SeriesAPIRequests: 118,
	}, snap)

	require.Len(t, client.inputs, 4)
	for _, in := range client.inputs {
		assert.Equal(t, windowEnd.Add(-5*time.Minute), aws.ToTime(in.StartTime))
		assert.Equal(t, windowEnd, aws.ToTime(in.EndTime))
		assert.Equal(t, int32(300), aws.ToInt32(in.Period))
		require.Len(t, in.Dimensions, 1)

		switch aws.ToString(in.Namespace) {
		case "AWS/Lambda":
			assert.Equal(t, "FunctionName", aws.ToString(in.Dimensions[0].Name))
			assert.Equal(t, "calcburst-calculator", aws.ToString(in.Dimensions[0].Value))
		case "AWS/ApiGateway":
			assert.Equal(t, "ApiName", aws.ToString(in.Dimensions[0].Name))
			assert.Equal(t, "CalcBurstAPI", aws.ToString(in.Dimensions[0].Value))
		default:
			t.Fatalf("unexpected namespace %q", aws.ToString(in.Namespace))
		}
	}
}

func TestCloudWatchSnapshotOmitsSeriesWithoutDatapoints(t *testing.T) {
	client := &fakeCloudWatch{points: map[string][]types.Datapoint{
		"Invocations": {{Sum: aws.Float64(5), Timestamp: aws.Time(windowEnd)}},
	}}

	snap, err := newTestSource(client).Snapshot(context.Background(), 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, Snapshot{SeriesInvocations: 5}, snap)
	_, ok := snap[SeriesErrors]
	assert.False(t, ok, "absent series must not be reported as zero")
}

func TestCloudWatchSnapshotUsesLatestDatapoint(t *testing.T) {
	client := &fakeCloudWatch{points: map[string][]types.Datapoint{
		"Errors": {
			{Sum: aws.Float64(1), Timestamp: aws.Time(windowEnd.Add(-4 * time.Minute))},
			{Sum: aws.Float64(9), Timestamp: aws.Time(windowEnd.Add(-time.Minute))},
			{Sum: aws.Float64(3), Timestamp: aws.Time(windowEnd.Add(-3 * time.Minute))},
		},
	}}

	snap, err := newTestSource(client).Snapshot(context.Background(), 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 9.0, snap[SeriesErrors])
}

func TestCloudWatchSnapshotKeepsPartialResultsOnError(t *testing.T) {
	cause := errors.New("access denied")
	client := &fakeCloudWatch{
		points: map[string][]types.Datapoint{
			"Invocations": {{Sum: aws.Float64(8), Timestamp: aws.Time(windowEnd)}},
		},
		errs: map[string]error{"Count": cause},
	}

	snap, err := newTestSource(client).Snapshot(context.Background(), 5*time.Minute)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Snapshot{SeriesInvocations: 8}, snap)
}

func TestStatisticValue(t *testing.T) {
	p := types.Datapoint{Sum: aws.Float64(2), Maximum: aws.Float64(9)}

	v, ok, err := statisticValue(p, types.StatisticMaximum)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 9.0, v)

	_, ok, err = statisticValue(p, types.StatisticAverage)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = statisticValue(p, types.Statistic("p99"))
	assert.Error(t, err)
}
