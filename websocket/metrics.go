// Package websocket - websocket/metrics.go
// file: websocket/metrics.go

package websocket

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"

	"festes-portal/logger"
)

// Namespace for all portal metrics
var metricsNamespace = "FestesPortal"

// Reuse a single CloudWatch client for all metrics calls
var cwClient = cloudwatch.New(session.Must(session.NewSession()))

// metricsEnabled lets tests and local runs skip CloudWatch entirely.
var metricsEnabled = true

// SetMetricsEnabled toggles metric publication (off for local/dev).
func SetMetricsEnabled(enabled bool) {
	metricsEnabled = enabled
}

// PublishChatConnections pushes the current WebSocket connection count.
func PublishChatConnections(count int, chatID string) {
	putMetric("ChatConnections", float64(count), "Count", chatID)
}

// PublishMessageLatency pushes persist-to-broadcast latency (in ms).
func PublishMessageLatency(latencyMs float64, chatID string) {
	putMetric("MessageLatencyMs", latencyMs, "Milliseconds", chatID)
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func putMetric(metricName string, value float64, unit string, chatID string) {
	if !metricsEnabled {
		return
	}
	_, err := cwClient.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace: aws.String(metricsNamespace),
		MetricData: []*cloudwatch.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Dimensions: []*cloudwatch.Dimension{
					{
						Name:  aws.String("ChatId"),
						Value: aws.String(chatID),
					},
				},
				Timestamp: aws.Time(time.Now()),
				Value:     aws.Float64(value),
				Unit:      aws.String(unit),
			},
		},
	})

	if err != nil {
		logger.Error.Printf("[putMetric] CloudWatch metric failed (%s): %v", metricName, err)
	}
}
