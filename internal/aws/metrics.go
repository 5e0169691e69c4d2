package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const metricNamespace = "UniformOrderflow"

// Metric names emitted by the checkout pipeline.
const (
	MetricStockLookupFallback = "StockLookupFallback"
	MetricSubmissionFailure   = "OrderSubmissionFailure"
)

// Metrics publishes engine counters to CloudWatch. Best-effort: callers
// ignore publish errors, metrics must never affect checkout outcomes.
type Metrics struct {
	client CloudWatchAPI
}

func NewMetrics(client CloudWatchAPI) *Metrics {
	return &Metrics{client: client}
}

// Count emits a count metric with a single reason dimension.
func (m *Metrics) Count(ctx context.Context, name, reason string, value float64) error {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: awsString(metricNamespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Value:      &value,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Reason"), Value: &reason},
				},
			},
		},
	}
	_, err := m.client.PutMetricData(ctx, input)
	return err
}
