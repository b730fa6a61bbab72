package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"golang.org/x/sync/errgroup"
)

// GetMetricStatisticsAPI is the part of the CloudWatch client the source uses.
type GetMetricStatisticsAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// Query describes one CloudWatch series and the Snapshot key it fills.
type Query struct {
	Key        string
	Namespace  string
	MetricName string
	Dimension  types.Dimension
	Statistic  types.Statistic
}

// DefaultQueries returns the Lambda and API Gateway series for a deployment.
func DefaultQueries(functionName, apiName string) []Query {
	fn := types.Dimension{Name: aws.String("FunctionName"), Value: aws.String(functionName)}
	api := types.Dimension{Name: aws.String("ApiName"), Value: aws.String(apiName)}

	return []Query{
		{Key: SeriesInvocations, Namespace: "AWS/Lambda", MetricName: "Invocations", Dimension: fn, Statistic: types.StatisticSum},
		{Key: SeriesErrors, Namespace: "AWS/Lambda", MetricName: "Errors", Dimension: fn, Statistic: types.StatisticSum},
		{Key: SeriesDuration, Namespace: "AWS/Lambda", MetricName: "Duration", Dimension: fn, Statistic: types.StatisticAverage},
		{Key: SeriesAPIRequests, Namespace: "AWS/ApiGateway", MetricName: "Count", Dimension: api, Statistic: types.StatisticSum},
	}
}

// CloudWatchSource queries every series concurrently. A failing query does
// not discard the results of the others.
type CloudWatchSource struct {
	client  GetMetricStatisticsAPI
	queries []Query
	now     func() time.Time
}

func NewCloudWatchSource(client GetMetricStatisticsAPI, queries []Query) *CloudWatchSource {
	return &CloudWatchSource{client: client, queries: queries, now: time.Now}
}

func (s *CloudWatchSource) Snapshot(ctx context.Context, window time.Duration) (Snapshot, error) {
	end := s.now().UTC()
	start := end.Add(-window)
	period := int32(window / time.Second)

	var (
		mu   sync.Mutex
		snap = Snapshot{}
		g    errgroup.Group
	)

	for _, q := range s.queries {
		g.Go(func() error {
			value, ok, err := s.query(ctx, q, start, end, period)
			if err != nil {
				return fmt.Errorf("query %s/%s: %w", q.Namespace, q.MetricName, err)
			}
			if ok {
				mu.Lock()
				snap[q.Key] = value
				mu.Unlock()
			}
			return nil
		})
	}

	err := g.Wait()
	return snap, err
}

func (s *CloudWatchSource) query(ctx context.Context, q Query, start, end time.Time, period int32) (float64, bool, error) {
	out, err := s.client.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(q.Namespace),
		MetricName: aws.String(q.MetricName),
		Dimensions: []types.Dimension{q.Dimension},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(period),
		Statistics: []types.Statistic{q.Statistic},
	})
	if err != nil {
		return 0, false, err
	}

	latest, ok := latestDatapoint(out.Datapoints)
	if !ok {
		return 0, false, nil
	}
	return statisticValue(latest, q.Statistic)
}

func latestDatapoint(points []types.Datapoint) (types.Datapoint, bool) {
	if len(points) == 0 {
		return types.Datapoint{}, false
	}
	latest := points[0]
	for _, p := range points[1:] {
		if aws.ToTime(p.Timestamp).After(aws.ToTime(latest.Timestamp)) {
			latest = p
		}
	}
	return latest, true
}

func statisticValue(p types.Datapoint, stat types.Statistic) (float64, bool, error) {
	var v *float64
	switch stat {
	case types.StatisticSum:
		v = p.Sum
	case types.StatisticAverage:
		v = p.Average
	case types.StatisticMaximum:
		v = p.Maximum
	case types.StatisticMinimum:
		v = p.Minimum
	case types.StatisticSampleCount:
		v = p.SampleCount
	default:
		return 0, false, fmt.Errorf("unsupported statistic %q", stat)
	}
	if v == nil {
		return 0, false, nil
	}
	return *v, true, nil
}
